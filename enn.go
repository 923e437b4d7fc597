package hubness

import "math"

// ENNOptions controls the Wilson72 edited nearest neighbor pass.
type ENNOptions struct {
	// K is the editing neighborhood size. Default: 3 (Wilson's original).
	K int
}

func (o *ENNOptions) applyDefaults() {
	if o.K == 0 {
		o.K = 3
	}
}

// ENNSelector implements Wilson's edited nearest neighbor rule: a point is
// retained only when the majority vote of its K nearest neighbors agrees
// with its own label. Noise points are never retained.
type ENNSelector struct {
	f    *NeighborSetFinder
	opts ENNOptions
}

// NewENNSelector wraps a finder whose neighbor sets are already computed
// with k >= opts.K.
func NewENNSelector(f *NeighborSetFinder, opts ENNOptions) (*ENNSelector, error) {
	opts.applyDefaults()
	if opts.K < 1 {
		return nil, configErrorf("K must be >= 1, got %d", opts.K)
	}
	if f == nil || !f.ready() {
		return nil, dataErrorf("neighbor sets not computed")
	}
	if f.K() < opts.K {
		return nil, configErrorf("finder holds k = %d neighbors, editing needs %d", f.K(), opts.K)
	}
	return &ENNSelector{f: f, opts: opts}, nil
}

func (s *ENNSelector) Name() string { return "wilson72" }

func (s *ENNSelector) Reduce() ([]int, error) {
	ds := s.f.ds
	voter := NewMajorityVoter(ds)

	var retained []int
	for i := 0; i < ds.Len(); i++ {
		if ds.IsNoise(i) {
			continue
		}
		idx := s.f.Neighbors(i)[:s.opts.K]
		dist := s.f.NeighborDistances(i)[:s.opts.K]
		if voter.Classify(idx, dist) == ds.LabelOf(i) {
			retained = append(retained, i)
		}
	}

	return repairClassCompleteness(ds, retained), nil
}

// ENRBFOptions controls the edited normalized RBF selector.
type ENRBFOptions struct {
	// Alpha scales the acceptance threshold: a point is retained when the
	// RBF-estimated probability of its own class exceeds Alpha times the
	// best competing class probability. Default: 1.0.
	Alpha float64

	// Sigma is the Gaussian kernel width. 0 means the mean nearest-
	// neighbor distance of the dataset.
	Sigma float64
}

func (o *ENRBFOptions) applyDefaults() {
	if o.Alpha == 0 {
		o.Alpha = 1.0
	}
}

// ENRBFSelector retains points whose class is locally supported by a
// normalized radial basis function estimate: P(c|x) is proportional to the
// summed Gaussian kernels of the other points of class c around x.
type ENRBFSelector struct {
	ds   Dataset
	dm   *DistanceMatrix
	opts ENRBFOptions
}

func NewENRBFSelector(ds Dataset, dm *DistanceMatrix, opts ENRBFOptions) (*ENRBFSelector, error) {
	if err := checkSelectorInputs(ds, dm); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if opts.Alpha <= 0 {
		return nil, configErrorf("Alpha must be > 0, got %f", opts.Alpha)
	}
	if opts.Sigma < 0 {
		return nil, configErrorf("Sigma must be >= 0, got %f", opts.Sigma)
	}
	return &ENRBFSelector{ds: ds, dm: dm, opts: opts}, nil
}

func (s *ENRBFSelector) Name() string { return "enrbf" }

func (s *ENRBFSelector) Reduce() ([]int, error) {
	labeled := labeledIndices(s.ds)
	if len(labeled) == 0 {
		return nil, dataErrorf("no labeled points to select from")
	}

	sigma := s.opts.Sigma
	if sigma == 0 {
		sigma = s.meanNearestNeighborDistance(labeled)
	}
	if sigma == 0 {
		// All points coincide; keep one per class through the repair pass.
		return repairClassCompleteness(s.ds, nil), nil
	}
	twoSigmaSq := 2 * sigma * sigma

	numClasses := s.ds.NumClasses()
	var retained []int
	support := make([]float64, numClasses)
	for _, i := range labeled {
		for c := range support {
			support[c] = 0
		}
		for _, j := range labeled {
			if j == i {
				continue
			}
			d := s.dm.Get(i, j)
			support[s.ds.LabelOf(j)] += math.Exp(-d * d / twoSigmaSq)
		}

		own := support[s.ds.LabelOf(i)]
		bestOther := 0.0
		for c, v := range support {
			if c != s.ds.LabelOf(i) && v > bestOther {
				bestOther = v
			}
		}
		if own > s.opts.Alpha*bestOther {
			retained = append(retained, i)
		}
	}

	return repairClassCompleteness(s.ds, retained), nil
}

func (s *ENRBFSelector) meanNearestNeighborDistance(labeled []int) float64 {
	var sum float64
	for _, i := range labeled {
		nearest := math.Inf(1)
		for _, j := range labeled {
			if j == i {
				continue
			}
			if d := s.dm.Get(i, j); d < nearest {
				nearest = d
			}
		}
		if !math.IsInf(nearest, 1) {
			sum += nearest
		}
	}
	return sum / float64(len(labeled))
}
