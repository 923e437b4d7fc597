package hubness

import (
	"math"
	"math/rand"
)

// CNNOptions controls the condensed nearest neighbor selectors.
type CNNOptions struct {
	// Rand drives the random seed and visiting order. Default: a fixed
	// seed, so runs are reproducible unless a source is supplied.
	Rand *rand.Rand

	// Rho is the GCNN absorption strictness in [0,1). A point is absorbed
	// once its nearest-enemy-prototype distance exceeds its nearest-friend-
	// prototype distance by more than Rho times the minimum heterogeneous
	// distance of the dataset. Rho = 0 reduces GCNN to plain CNN
	// absorption. Only used by GCNN. Default: 0.
	Rho float64
}

func (o *CNNOptions) applyDefaults() {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(1))
	}
}

func (o *CNNOptions) validate() error {
	if o.Rho < 0 || o.Rho >= 1 {
		return configErrorf("Rho must be in [0,1), got %f", o.Rho)
	}
	return nil
}

// CNNSelector implements Hart's condensed nearest neighbor rule: starting
// from one random prototype per class, points misclassified by the
// 1-NN rule over the current prototypes are promoted, pass after pass,
// until a full pass adds nothing.
type CNNSelector struct {
	ds   Dataset
	dm   *DistanceMatrix
	opts CNNOptions
}

func NewCNNSelector(ds Dataset, dm *DistanceMatrix, opts CNNOptions) (*CNNSelector, error) {
	if err := checkSelectorInputs(ds, dm); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	return &CNNSelector{ds: ds, dm: dm, opts: opts}, nil
}

func (s *CNNSelector) Name() string { return "cnn" }

func (s *CNNSelector) Reduce() ([]int, error) {
	protos := seedOnePerClass(s.ds, s.opts.Rand)
	if len(protos) == 0 {
		return nil, dataErrorf("no labeled points to select from")
	}

	inStore := make([]bool, s.ds.Len())
	for _, p := range protos {
		inStore[p] = true
	}

	order := labeledIndices(s.ds)
	for {
		added := false
		s.opts.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			if inStore[i] {
				continue
			}
			if classify1NN(s.ds, s.dm, protos, i) != s.ds.LabelOf(i) {
				protos = append(protos, i)
				inStore[i] = true
				added = true
			}
		}
		if !added {
			break
		}
	}

	return repairClassCompleteness(s.ds, protos), nil
}

// GCNNSelector implements generalized condensed nearest neighbor
// selection. Each unabsorbed point keeps its distance to the nearest
// same-class prototype (friend) and nearest different-class prototype
// (enemy); promotions update only those two scalars per remaining point.
type GCNNSelector struct {
	ds   Dataset
	dm   *DistanceMatrix
	opts CNNOptions
}

func NewGCNNSelector(ds Dataset, dm *DistanceMatrix, opts CNNOptions) (*GCNNSelector, error) {
	if err := checkSelectorInputs(ds, dm); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &GCNNSelector{ds: ds, dm: dm, opts: opts}, nil
}

func (s *GCNNSelector) Name() string { return "gcnn" }

func (s *GCNNSelector) Reduce() ([]int, error) {
	labeled := labeledIndices(s.ds)
	if len(labeled) == 0 {
		return nil, dataErrorf("no labeled points to select from")
	}

	// Minimum heterogeneous distance: the closest any two points of
	// different classes come to each other.
	deltaN := math.Inf(1)
	for a := 0; a < len(labeled); a++ {
		for b := a + 1; b < len(labeled); b++ {
			i, j := labeled[a], labeled[b]
			if s.ds.LabelOf(i) == s.ds.LabelOf(j) {
				continue
			}
			if d := s.dm.Get(i, j); d < deltaN {
				deltaN = d
			}
		}
	}
	if math.IsInf(deltaN, 1) {
		// Single-class data: one prototype absorbs everything.
		return repairClassCompleteness(s.ds, seedOnePerClass(s.ds, s.opts.Rand)), nil
	}

	protos := seedOnePerClass(s.ds, s.opts.Rand)
	isProto := make([]bool, s.ds.Len())
	for _, p := range protos {
		isProto[p] = true
	}

	friend := make([]float64, s.ds.Len())
	enemy := make([]float64, s.ds.Len())
	for _, i := range labeled {
		friend[i] = math.Inf(1)
		enemy[i] = math.Inf(1)
	}
	for _, i := range labeled {
		if isProto[i] {
			continue
		}
		for _, p := range protos {
			s.observePrototype(friend, enemy, i, p)
		}
	}

	threshold := s.opts.Rho * deltaN
	for {
		var unabsorbed []int
		for _, i := range labeled {
			if isProto[i] {
				continue
			}
			if enemy[i]-friend[i] <= threshold {
				unabsorbed = append(unabsorbed, i)
			}
		}
		if len(unabsorbed) == 0 {
			break
		}

		pick := unabsorbed[s.opts.Rand.Intn(len(unabsorbed))]
		protos = append(protos, pick)
		isProto[pick] = true

		// Only the new prototype can tighten anyone's friend or enemy
		// distance.
		for _, i := range labeled {
			if isProto[i] {
				continue
			}
			s.observePrototype(friend, enemy, i, pick)
		}
	}

	return repairClassCompleteness(s.ds, protos), nil
}

// observePrototype folds prototype p into point i's friend/enemy
// distances.
func (s *GCNNSelector) observePrototype(friend, enemy []float64, i, p int) {
	d := s.dm.Get(i, p)
	if s.ds.LabelOf(i) == s.ds.LabelOf(p) {
		if d < friend[i] {
			friend[i] = d
		}
	} else if d < enemy[i] {
		enemy[i] = d
	}
}

// seedOnePerClass picks one random labeled point per observed class.
func seedOnePerClass(ds Dataset, rng *rand.Rand) []int {
	byClass := make([][]int, ds.NumClasses())
	for i := 0; i < ds.Len(); i++ {
		if !ds.IsNoise(i) {
			c := ds.LabelOf(i)
			byClass[c] = append(byClass[c], i)
		}
	}
	var protos []int
	for _, members := range byClass {
		if len(members) > 0 {
			protos = append(protos, members[rng.Intn(len(members))])
		}
	}
	return protos
}

// labeledIndices returns the non-noise point indices in ascending order.
func labeledIndices(ds Dataset) []int {
	var out []int
	for i := 0; i < ds.Len(); i++ {
		if !ds.IsNoise(i) {
			out = append(out, i)
		}
	}
	return out
}

func checkSelectorInputs(ds Dataset, dm *DistanceMatrix) error {
	if ds == nil {
		return configErrorf("nil dataset")
	}
	if dm == nil {
		return dataErrorf("distance matrix required")
	}
	if dm.Len() != ds.Len() {
		return configErrorf("distance matrix covers %d points, dataset has %d", dm.Len(), ds.Len())
	}
	return nil
}
