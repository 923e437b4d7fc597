package hubness

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DunnIndex is the minimum inter-cluster centroid distance divided by the
// maximum cluster diameter. Fewer than 2 non-empty clusters yields the
// sentinel 0; a vanishing maximum diameter with separated centroids yields
// +Inf.
type DunnIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

func NewDunnIndex(cl *Clustering, dm *DistanceMatrix) *DunnIndex {
	return &DunnIndex{cl: cl, dm: dm}
}

func (d *DunnIndex) Name() string { return "dunn" }

func (d *DunnIndex) Validity() (float64, error) {
	if err := checkIndexInputs(d.cl, d.dm); err != nil {
		return 0, err
	}
	clusters := d.cl.nonEmpty()
	if len(clusters) < 2 {
		return 0, nil
	}

	minSep := math.Inf(1)
	for a := 0; a < len(clusters); a++ {
		ca := clusters[a].Centroid()
		if ca == nil {
			continue
		}
		for b := a + 1; b < len(clusters); b++ {
			cb := clusters[b].Centroid()
			if cb == nil {
				continue
			}
			if sep := (EuclideanMetric{}).Distance(ca, cb); sep < minSep {
				minSep = sep
			}
		}
	}
	if math.IsInf(minSep, 1) {
		return 0, nil
	}

	var maxDiameter float64
	for _, c := range clusters {
		if diam := clusterDiameter(c, d.cl.ds, d.dm); diam > maxDiameter {
			maxDiameter = diam
		}
	}
	if maxDiameter == 0 {
		return math.Inf(1), nil
	}
	return minSep / maxDiameter, nil
}

// CalinskiHarabaszIndex is the between/within scatter trace ratio scaled
// by (N-K)/(K-1). Fewer than 2 non-empty clusters yields 0; zero within-
// cluster scatter yields +Inf.
type CalinskiHarabaszIndex struct {
	cl *Clustering
}

func NewCalinskiHarabaszIndex(cl *Clustering) *CalinskiHarabaszIndex {
	return &CalinskiHarabaszIndex{cl: cl}
}

func (c *CalinskiHarabaszIndex) Name() string { return "calinski-harabasz" }

func (c *CalinskiHarabaszIndex) Validity() (float64, error) {
	if c.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	clusters := c.cl.nonEmpty()
	k := len(clusters)
	if k < 2 {
		return 0, nil
	}
	global := c.cl.globalCentroid()
	if global == nil {
		return 0, nil
	}

	var between, within float64
	var n int
	for _, cluster := range clusters {
		centroid := cluster.Centroid()
		if centroid == nil {
			continue
		}
		size := 0
		for _, i := range cluster.Members {
			if c.cl.ds.IsNoise(i) {
				continue
			}
			within += euclideanSumOfSquares(c.cl.ds.Point(i), centroid)
			size++
		}
		between += float64(size) * euclideanSumOfSquares(centroid, global)
		n += size
	}

	if within == 0 {
		return math.Inf(1), nil
	}
	return (between / within) * (float64(n-k) / float64(k-1)), nil
}

// PBMIndex is ((1/K) * (E1/Ew) * Dmax)^2, where E1 is the summed distance
// of all points to the global centroid, Ew the summed distance of points
// to their own centroid, and Dmax the largest centroid separation. Fewer
// than 2 non-empty clusters yields 0; zero Ew yields +Inf.
type PBMIndex struct {
	cl *Clustering
}

func NewPBMIndex(cl *Clustering) *PBMIndex { return &PBMIndex{cl: cl} }

func (p *PBMIndex) Name() string { return "pbm" }

func (p *PBMIndex) Validity() (float64, error) {
	if p.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	clusters := p.cl.nonEmpty()
	k := len(clusters)
	if k < 2 {
		return 0, nil
	}
	global := p.cl.globalCentroid()
	if global == nil {
		return 0, nil
	}

	var e1, ew float64
	for _, cluster := range clusters {
		centroid := cluster.Centroid()
		if centroid == nil {
			continue
		}
		for _, i := range cluster.Members {
			if p.cl.ds.IsNoise(i) {
				continue
			}
			e1 += EuclideanMetric{}.Distance(p.cl.ds.Point(i), global)
			ew += EuclideanMetric{}.Distance(p.cl.ds.Point(i), centroid)
		}
	}

	var dMax float64
	for a := 0; a < len(clusters); a++ {
		ca := clusters[a].Centroid()
		if ca == nil {
			continue
		}
		for b := a + 1; b < len(clusters); b++ {
			cb := clusters[b].Centroid()
			if cb == nil {
				continue
			}
			if sep := (EuclideanMetric{}).Distance(ca, cb); sep > dMax {
				dMax = sep
			}
		}
	}

	if ew == 0 {
		return math.Inf(1), nil
	}
	v := (1 / float64(k)) * (e1 / ew) * dMax
	return v * v, nil
}

// RSIndex is the R-squared ratio (SSt - SSw)/SSt over squared deviations
// from centroids: the share of total scatter explained by the clustering,
// in [0,1]. Degenerate scatter (SSt == 0) yields the sentinel 0.
type RSIndex struct {
	cl *Clustering
}

func NewRSIndex(cl *Clustering) *RSIndex { return &RSIndex{cl: cl} }

func (r *RSIndex) Name() string { return "rs" }

func (r *RSIndex) Validity() (float64, error) {
	if r.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	clusters := r.cl.nonEmpty()
	if len(clusters) < 2 {
		return 0, nil
	}
	global := r.cl.globalCentroid()
	if global == nil {
		return 0, nil
	}

	var sst, ssw float64
	for _, cluster := range clusters {
		centroid := cluster.Centroid()
		if centroid == nil {
			continue
		}
		for _, i := range cluster.Members {
			if r.cl.ds.IsNoise(i) {
				continue
			}
			sst += euclideanSumOfSquares(r.cl.ds.Point(i), global)
			ssw += euclideanSumOfSquares(r.cl.ds.Point(i), centroid)
		}
	}

	if sst == 0 {
		return 0, nil
	}
	return (sst - ssw) / sst, nil
}

// McClainRaoIndex is the ratio of mean intra-cluster to mean inter-cluster
// distance, naturally lower-is-better; Validity returns its reciprocal so
// the uniform orientation holds. Degenerate inputs (no intra or no inter
// pairs) yield the +Inf sentinel of vanished-denominator ratio indices.
type McClainRaoIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

func NewMcClainRaoIndex(cl *Clustering, dm *DistanceMatrix) *McClainRaoIndex {
	return &McClainRaoIndex{cl: cl, dm: dm}
}

func (m *McClainRaoIndex) Name() string { return "mcclain-rao" }

func (m *McClainRaoIndex) Validity() (float64, error) {
	if err := checkIndexInputs(m.cl, m.dm); err != nil {
		return 0, err
	}
	if len(m.cl.nonEmpty()) < 2 {
		return 0, nil
	}
	intra, inter := splitPairDistances(m.cl, m.dm)
	if len(intra) == 0 || len(inter) == 0 {
		return math.Inf(1), nil
	}
	meanIntra := floats.Sum(intra) / float64(len(intra))
	meanInter := floats.Sum(inter) / float64(len(inter))
	if meanIntra == 0 {
		return math.Inf(1), nil
	}
	return meanInter / meanIntra, nil
}

// SDIndex computes the SD validity index (average scattering plus total
// separation), naturally lower-is-better; Validity returns 1/SD. Fewer
// than 2 non-empty clusters yields 0.
type SDIndex struct {
	cl *Clustering
}

func NewSDIndex(cl *Clustering) *SDIndex { return &SDIndex{cl: cl} }

func (s *SDIndex) Name() string { return "sd" }

func (s *SDIndex) Validity() (float64, error) {
	if s.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	clusters := s.cl.nonEmpty()
	k := len(clusters)
	if k < 2 {
		return 0, nil
	}

	globalVar := s.varianceNorm(nil)
	if globalVar == 0 {
		return 0, nil
	}

	// Scattering: mean cluster variance norm over the dataset variance norm.
	var scat float64
	for _, c := range clusters {
		scat += s.varianceNorm(c)
	}
	scat /= float64(k) * globalVar

	// Separation: (Dmax/Dmin) * sum over clusters of the inverse summed
	// centroid distances.
	dMin, dMax := math.Inf(1), 0.0
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			ca, cb := clusters[a].Centroid(), clusters[b].Centroid()
			if ca == nil || cb == nil {
				continue
			}
			d := EuclideanMetric{}.Distance(ca, cb)
			if d < dMin {
				dMin = d
			}
			if d > dMax {
				dMax = d
			}
		}
	}
	if dMin == 0 || math.IsInf(dMin, 1) {
		return 0, nil
	}

	var dis float64
	for a := 0; a < k; a++ {
		ca := clusters[a].Centroid()
		if ca == nil {
			continue
		}
		var sum float64
		for b := 0; b < k; b++ {
			if b == a {
				continue
			}
			cb := clusters[b].Centroid()
			if cb == nil {
				continue
			}
			sum += EuclideanMetric{}.Distance(ca, cb)
		}
		if sum > 0 {
			dis += 1 / sum
		}
	}
	dis *= dMax / dMin

	sd := float64(k)*scat + dis
	if sd == 0 {
		return 0, nil
	}
	return 1 / sd, nil
}

// varianceNorm returns the Euclidean norm of the per-dimension variance
// vector of a cluster, or of the whole assigned dataset when c is nil.
func (s *SDIndex) varianceNorm(c *Cluster) float64 {
	var members []int
	if c != nil {
		members = c.Members
	} else {
		for i, a := range s.cl.Assignment {
			if a != Unassigned {
				members = append(members, i)
			}
		}
	}

	var centroid []float64
	if c != nil {
		centroid = c.Centroid()
	} else {
		centroid = s.cl.globalCentroid()
	}
	if centroid == nil {
		return 0
	}

	variance := make([]float64, len(centroid))
	count := 0
	for _, i := range members {
		if s.cl.ds.IsNoise(i) {
			continue
		}
		p := s.cl.ds.Point(i)
		for d := range variance {
			diff := p[d] - centroid[d]
			variance[d] += diff * diff
		}
		count++
	}
	if count == 0 {
		return 0
	}
	for d := range variance {
		variance[d] /= float64(count)
	}
	return math.Sqrt(floats.Dot(variance, variance))
}
