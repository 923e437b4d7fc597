package hubness

import "sort"

// QualityIndex is the uniform contract of the clustering validity family:
// a single scalar where higher always means a better clustering. Indices
// whose natural orientation is "lower is better" (C-index, McClain-Rao,
// SD) are complemented or inverted at this boundary.
//
// Degenerate clusterings (fewer than 2 non-empty clusters, vanishing
// denominators) yield a documented sentinel value per index rather than an
// error; genuinely invalid inputs (length mismatches, missing ground
// truth) fail with ErrConfiguration or ErrDataAvailability.
type QualityIndex interface {
	Name() string
	Validity() (float64, error)
}

// splitPairDistances partitions all pairwise distances between assigned,
// non-noise points into intra-cluster and inter-cluster sets.
func splitPairDistances(cl *Clustering, dm *DistanceMatrix) (intra, inter []float64) {
	n := len(cl.Assignment)
	for i := 0; i < n; i++ {
		ci := cl.Assignment[i]
		if ci == Unassigned || cl.ds.IsNoise(i) {
			continue
		}
		for j := i + 1; j < n; j++ {
			cj := cl.Assignment[j]
			if cj == Unassigned || cl.ds.IsNoise(j) {
				continue
			}
			d := dm.Get(i, j)
			if ci == cj {
				intra = append(intra, d)
			} else {
				inter = append(inter, d)
			}
		}
	}
	return intra, inter
}

// concordanceCounts counts, over all (intra, inter) distance pairs, how
// many are concordant (intra < inter), discordant (intra > inter) and tied.
// Both inputs are sorted and merged, avoiding the quartic brute force over
// point pairs.
func concordanceCounts(intra, inter []float64) (concordant, discordant, ties uint64) {
	intraSorted := append([]float64(nil), intra...)
	interSorted := append([]float64(nil), inter...)
	sort.Float64s(intraSorted)
	sort.Float64s(interSorted)

	// For each intra value a, inter values above a are concordant and
	// inter values below are discordant. Walk both sorted arrays once,
	// carrying the running split position.
	lo, hi := 0, 0
	for _, a := range intraSorted {
		for lo < len(interSorted) && interSorted[lo] < a {
			lo++
		}
		if hi < lo {
			hi = lo
		}
		for hi < len(interSorted) && interSorted[hi] == a {
			hi++
		}
		discordant += uint64(lo)
		ties += uint64(hi - lo)
		concordant += uint64(len(interSorted) - hi)
	}
	return concordant, discordant, ties
}

// clusterDiameter returns the maximum pairwise distance within a cluster,
// skipping noise members.
func clusterDiameter(c *Cluster, ds Dataset, dm *DistanceMatrix) float64 {
	var diameter float64
	for a := 0; a < len(c.Members); a++ {
		i := c.Members[a]
		if ds.IsNoise(i) {
			continue
		}
		for b := a + 1; b < len(c.Members); b++ {
			j := c.Members[b]
			if ds.IsNoise(j) {
				continue
			}
			if d := dm.Get(i, j); d > diameter {
				diameter = d
			}
		}
	}
	return diameter
}

// checkIndexInputs validates the shared preconditions of matrix-based
// indices.
func checkIndexInputs(cl *Clustering, dm *DistanceMatrix) error {
	if cl == nil {
		return configErrorf("nil clustering")
	}
	if dm == nil {
		return dataErrorf("distance matrix required")
	}
	if dm.Len() != len(cl.Assignment) {
		return configErrorf("distance matrix covers %d points, assignment has %d", dm.Len(), len(cl.Assignment))
	}
	return nil
}
