package hubness

import "math"

// ICFOptions controls iterative case filtering.
type ICFOptions struct {
	// ENNK is the neighborhood size of the initial Wilson72 editing pass.
	// Default: 3.
	ENNK int

	// MinSize stops the recursion once the retained set would fall below
	// this many points. 0 means twice the number of classes.
	MinSize int
}

func (o *ICFOptions) applyDefaults(numClasses int) {
	if o.ENNK == 0 {
		o.ENNK = 3
	}
	if o.MinSize == 0 {
		o.MinSize = 2 * numClasses
	}
}

// ICFSelector implements iterative case filtering: after an initial
// Wilson72 editing pass, each round computes per-point coverage (how many
// other points hold this point within their nearest-enemy radius) and
// reachability (how many points this point holds within its own radius),
// retains points with coverage >= reachability, and recurses on the
// retained subset. Each recursion level owns an immutable local-to-
// original index table; levels never mutate a caller's table.
type ICFSelector struct {
	f    *NeighborSetFinder
	opts ICFOptions
}

// NewICFSelector wraps a finder whose neighbor sets are computed with
// k >= opts.ENNK.
func NewICFSelector(f *NeighborSetFinder, opts ICFOptions) (*ICFSelector, error) {
	if f == nil || !f.ready() {
		return nil, dataErrorf("neighbor sets not computed")
	}
	opts.applyDefaults(f.ds.NumClasses())
	if opts.ENNK < 1 {
		return nil, configErrorf("ENNK must be >= 1, got %d", opts.ENNK)
	}
	if f.K() < opts.ENNK {
		return nil, configErrorf("finder holds k = %d neighbors, editing needs %d", f.K(), opts.ENNK)
	}
	return &ICFSelector{f: f, opts: opts}, nil
}

func (s *ICFSelector) Name() string { return "icf" }

func (s *ICFSelector) Reduce() ([]int, error) {
	enn, err := NewENNSelector(s.f, ENNOptions{K: s.opts.ENNK})
	if err != nil {
		return nil, err
	}
	edited, err := enn.Reduce()
	if err != nil {
		return nil, err
	}

	retained := s.filterLevel(edited)
	return repairClassCompleteness(s.f.ds, retained), nil
}

// filterLevel runs one coverage/reachability round over the level's
// local-to-original table and recurses while the set keeps shrinking
// legally. level is never modified; each recursion builds its own table.
func (s *ICFSelector) filterLevel(level []int) []int {
	ds := s.f.ds
	m := len(level)
	if m < s.opts.MinSize {
		return level
	}

	// Nearest-enemy radius per local point, within this level only.
	radius := make([]float64, m)
	for a := 0; a < m; a++ {
		nearest := math.Inf(1)
		la := ds.LabelOf(level[a])
		for b := 0; b < m; b++ {
			if ds.LabelOf(level[b]) == la {
				continue
			}
			if d := s.f.distance(level[a], level[b]); d < nearest {
				nearest = d
			}
		}
		if math.IsInf(nearest, 1) {
			// A class already lost its enemies; the level is degenerate.
			return level
		}
		radius[a] = nearest
	}

	coverage := make([]int, m)
	reachability := make([]int, m)
	for a := 0; a < m; a++ {
		for b := 0; b < m; b++ {
			if a == b {
				continue
			}
			d := s.f.distance(level[a], level[b])
			if d < radius[b] {
				coverage[a]++
			}
			if d < radius[a] {
				reachability[a]++
			}
		}
	}

	var next []int
	for a := 0; a < m; a++ {
		if coverage[a] >= reachability[a] {
			next = append(next, level[a])
		}
	}

	if len(next) == m || len(next) < s.opts.MinSize || losesClass(ds, level, next) {
		return level
	}
	return s.filterLevel(next)
}

// losesClass reports whether next drops a class that prev still carried.
func losesClass(ds Dataset, prev, next []int) bool {
	had := make(map[int]bool)
	for _, i := range prev {
		had[ds.LabelOf(i)] = true
	}
	have := make(map[int]bool)
	for _, i := range next {
		have[ds.LabelOf(i)] = true
	}
	for c := range had {
		if !have[c] {
			return true
		}
	}
	return false
}
