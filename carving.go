package hubness

// CarvingOptions controls the Carving selector.
type CarvingOptions struct {
	// KHM is the hit-miss neighborhood size. Default: 3.
	KHM int
}

func (o *CarvingOptions) applyDefaults() {
	if o.KHM == 0 {
		o.KHM = 3
	}
}

// HMScoreSelector keeps the points whose hit-miss balance is favorable:
// a point survives when it serves as a hit at least as often as it serves
// as a miss, and is a hit at least once. Carving uses it as the internal
// reducer that produces its starting candidate superset.
type HMScoreSelector struct {
	ds   Dataset
	dm   *DistanceMatrix
	opts CarvingOptions
}

func NewHMScoreSelector(ds Dataset, dm *DistanceMatrix, opts CarvingOptions) (*HMScoreSelector, error) {
	if err := checkSelectorInputs(ds, dm); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if opts.KHM < 1 {
		return nil, configErrorf("KHM must be >= 1, got %d", opts.KHM)
	}
	return &HMScoreSelector{ds: ds, dm: dm, opts: opts}, nil
}

func (s *HMScoreSelector) Name() string { return "hm-score" }

func (s *HMScoreSelector) Reduce() ([]int, error) {
	active := labeledIndices(s.ds)
	if len(active) == 0 {
		return nil, dataErrorf("no labeled points to select from")
	}
	selected, err := hmScoreReduce(s.ds, s.dm, active, s.opts.KHM)
	if err != nil {
		return nil, err
	}
	return repairClassCompleteness(s.ds, selected), nil
}

func hmScoreReduce(ds Dataset, dm *DistanceMatrix, active []int, kHM int) ([]int, error) {
	net, err := NewHitMissNetwork(ds, dm, active, kHM)
	if err != nil {
		return nil, err
	}
	var selected []int
	for pos, i := range net.Active() {
		if net.HitFrequency(pos) > 0 && net.HitFrequency(pos) >= net.MissFrequency(pos) {
			selected = append(selected, i)
		}
	}
	return selected, nil
}

// CarvingSelector implements the Carving reduction: starting from the
// hit-miss-score candidate superset, it repeatedly offers border points
// (those with at least one miss neighbor in the remainder's hit-miss
// network) to the prototype set, keeping an offer only when it does not
// worsen the leave-one-out 1-NN error over the remainder, then carves the
// accepted points out of the remainder and rebuilds the network. The loop
// ends when a round accepts nothing or the remainder no longer supports
// the hit-miss neighborhood.
type CarvingSelector struct {
	ds   Dataset
	dm   *DistanceMatrix
	opts CarvingOptions
}

func NewCarvingSelector(ds Dataset, dm *DistanceMatrix, opts CarvingOptions) (*CarvingSelector, error) {
	if err := checkSelectorInputs(ds, dm); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if opts.KHM < 1 {
		return nil, configErrorf("KHM must be >= 1, got %d", opts.KHM)
	}
	return &CarvingSelector{ds: ds, dm: dm, opts: opts}, nil
}

func (s *CarvingSelector) Name() string { return "carving" }

func (s *CarvingSelector) Reduce() ([]int, error) {
	all := labeledIndices(s.ds)
	if len(all) == 0 {
		return nil, dataErrorf("no labeled points to select from")
	}

	selected, err := hmScoreReduce(s.ds, s.dm, all, s.opts.KHM)
	if err != nil {
		return nil, err
	}
	selected = sortedDedup(selected)

	inSelected := make([]bool, s.ds.Len())
	for _, p := range selected {
		inSelected[p] = true
	}
	var remainder []int
	for _, i := range all {
		if !inSelected[i] {
			remainder = append(remainder, i)
		}
	}

	for len(remainder) > s.opts.KHM {
		net, err := NewHitMissNetwork(s.ds, s.dm, remainder, s.opts.KHM)
		if err != nil {
			return nil, err
		}

		// Border points of the remainder: those with a miss neighbor.
		var candidates []int
		for pos, i := range net.Active() {
			if len(net.Misses(pos)) > 0 {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			break
		}

		baseline := s.looErrors(selected, remainder)
		var accepted []int
		for _, c := range candidates {
			trial := append(append([]int(nil), selected...), c)
			if s.looErrors(trial, remainder) <= baseline {
				selected = sortedDedup(trial)
				inSelected[c] = true
				accepted = append(accepted, c)
				baseline = s.looErrors(selected, remainder)
			}
		}
		if len(accepted) == 0 {
			break
		}

		var next []int
		for _, i := range remainder {
			if !inSelected[i] {
				next = append(next, i)
			}
		}
		remainder = next
	}

	return repairClassCompleteness(s.ds, selected), nil
}

// looErrors counts the points of eval misclassified by the 1-NN rule over
// protos, with leave-one-out semantics for points in both sets.
func (s *CarvingSelector) looErrors(protos, eval []int) int {
	errors := 0
	for _, i := range eval {
		if classify1NN(s.ds, s.dm, protos, i) != s.ds.LabelOf(i) {
			errors++
		}
	}
	return errors
}
