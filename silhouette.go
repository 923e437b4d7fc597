package hubness

// SilhouetteIndex is the mean silhouette coefficient: for each assigned
// non-noise point, (b-a)/max(a,b) where a is the mean distance to the rest
// of its own cluster and b is the smallest mean distance to another
// non-empty cluster. Fewer than 2 non-empty clusters yields the sentinel 0.
type SilhouetteIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

// NewSilhouetteIndex builds a silhouette calculator over a clustering and
// its distance matrix.
func NewSilhouetteIndex(cl *Clustering, dm *DistanceMatrix) *SilhouetteIndex {
	return &SilhouetteIndex{cl: cl, dm: dm}
}

func (s *SilhouetteIndex) Name() string { return "silhouette" }

func (s *SilhouetteIndex) Validity() (float64, error) {
	if err := checkIndexInputs(s.cl, s.dm); err != nil {
		return 0, err
	}
	if len(s.cl.nonEmpty()) < 2 {
		return 0, nil
	}

	var sum float64
	var counted int
	for i, ci := range s.cl.Assignment {
		if ci == Unassigned || s.cl.ds.IsNoise(i) {
			continue
		}

		// Mean distance from i to every non-empty cluster, own included.
		meanTo := make([]float64, s.cl.NumClusters())
		sizes := make([]int, s.cl.NumClusters())
		for j, cj := range s.cl.Assignment {
			if j == i || cj == Unassigned || s.cl.ds.IsNoise(j) {
				continue
			}
			meanTo[cj] += s.dm.Get(i, j)
			sizes[cj]++
		}

		if sizes[ci] == 0 {
			// Singleton cluster: silhouette is defined as 0.
			counted++
			continue
		}
		a := meanTo[ci] / float64(sizes[ci])

		b := -1.0
		for c := range meanTo {
			if c == ci || sizes[c] == 0 {
				continue
			}
			m := meanTo[c] / float64(sizes[c])
			if b < 0 || m < b {
				b = m
			}
		}
		if b < 0 {
			counted++
			continue
		}

		denom := max(a, b)
		if denom > 0 {
			sum += (b - a) / denom
		}
		counted++
	}

	if counted == 0 {
		return 0, nil
	}
	return sum / float64(counted), nil
}
