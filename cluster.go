package hubness

import "gonum.org/v1/gonum/floats"

// Unassigned marks a point that belongs to no cluster. Unassigned points
// are excluded from all pairwise sums in the quality indices.
const Unassigned = -1

// Cluster holds the member indices of one cluster and its lazily computed
// centroid. Noise members are skipped when the centroid is formed.
type Cluster struct {
	Members  []int
	ds       Dataset
	centroid []float64
}

// Len returns the number of member points.
func (c *Cluster) Len() int { return len(c.Members) }

// Centroid returns the mean feature vector of the cluster's non-noise
// members, computing it on first use. Empty clusters (or clusters whose
// members are all noise) return nil.
func (c *Cluster) Centroid() []float64 {
	if c.centroid != nil {
		return c.centroid
	}
	var dims int
	if d, ok := c.ds.(*DenseDataset); ok {
		dims = d.Dims()
	} else if len(c.Members) > 0 {
		dims = len(c.ds.Point(c.Members[0]))
	}
	if dims == 0 {
		return nil
	}

	sum := make([]float64, dims)
	count := 0
	for _, i := range c.Members {
		if c.ds.IsNoise(i) {
			continue
		}
		floats.Add(sum, c.ds.Point(i))
		count++
	}
	if count == 0 {
		return nil
	}
	floats.Scale(1/float64(count), sum)
	c.centroid = sum
	return c.centroid
}

// Clustering pairs a per-point cluster assignment with the Cluster objects
// it induces. Cluster ids must form a dense range 0..numClusters-1; the
// Unassigned sentinel marks noise. Empty clusters are permitted.
type Clustering struct {
	Assignment []int
	Clusters   []*Cluster
	ds         Dataset
}

// NewClustering validates the assignment against ds and builds the cluster
// membership lists. The assignment length must match the dataset size.
func NewClustering(ds Dataset, assignment []int) (*Clustering, error) {
	if ds == nil {
		return nil, configErrorf("nil dataset")
	}
	if len(assignment) != ds.Len() {
		return nil, configErrorf("assignment has %d entries, dataset has %d points", len(assignment), ds.Len())
	}

	numClusters := 0
	for i, c := range assignment {
		if c < 0 && c != Unassigned {
			return nil, configErrorf("point %d has cluster id %d; ids must be >= 0 or Unassigned", i, c)
		}
		if c+1 > numClusters {
			numClusters = c + 1
		}
	}

	clusters := make([]*Cluster, numClusters)
	for c := range clusters {
		clusters[c] = &Cluster{ds: ds}
	}
	for i, c := range assignment {
		if c == Unassigned {
			continue
		}
		clusters[c].Members = append(clusters[c].Members, i)
	}

	return &Clustering{
		Assignment: append([]int(nil), assignment...),
		Clusters:   clusters,
		ds:         ds,
	}, nil
}

// NumClusters returns the number of cluster ids, including empty ones.
func (cl *Clustering) NumClusters() int { return len(cl.Clusters) }

// nonEmpty returns the clusters with at least one member.
func (cl *Clustering) nonEmpty() []*Cluster {
	var out []*Cluster
	for _, c := range cl.Clusters {
		if c.Len() > 0 {
			out = append(out, c)
		}
	}
	return out
}

// globalCentroid returns the mean feature vector over all assigned,
// non-noise points, or nil if there are none.
func (cl *Clustering) globalCentroid() []float64 {
	all := &Cluster{ds: cl.ds}
	for i, c := range cl.Assignment {
		if c != Unassigned {
			all.Members = append(all.Members, i)
		}
	}
	return all.Centroid()
}
