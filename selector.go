package hubness

import "sort"

// InstanceSelector reduces a dataset to a subset of prototype indices.
// Reduce returns an ascending, duplicate-free list of original dataset
// indices. Every implementation applies the class-completeness repair, so
// each class label observed in the source data keeps at least one
// prototype whenever the data is non-degenerate.
type InstanceSelector interface {
	Name() string
	Reduce() ([]int, error)
}

// repairClassCompleteness is the mandatory post-processing pass shared by
// all selectors: for every class with zero selected prototypes, points of
// that class are added back in index order until the class is represented.
// The result is sorted and duplicate-free.
func repairClassCompleteness(ds Dataset, protos []int) []int {
	out := sortedDedup(protos)

	present := make([]bool, ds.NumClasses())
	for _, i := range out {
		if !ds.IsNoise(i) {
			present[ds.LabelOf(i)] = true
		}
	}

	observed := observedClasses(ds)
	missing := false
	for c, ok := range present {
		if !ok && observed[c] {
			missing = true
			for i := 0; i < ds.Len(); i++ {
				if !ds.IsNoise(i) && ds.LabelOf(i) == c {
					out = append(out, i)
					break
				}
			}
		}
	}
	if missing {
		out = sortedDedup(out)
	}
	return out
}

func sortedDedup(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	w := 0
	for r := 0; r < len(out); r++ {
		if r == 0 || out[r] != out[r-1] {
			out[w] = out[r]
			w++
		}
	}
	return out[:w]
}

// PrototypeHubness recomputes occurrence statistics with neighbor sets
// restricted to the prototype subset, reusing the finder's seeded
// restricted search. Returns total, good and bad occurrence counts per
// point.
func PrototypeHubness(f *NeighborSetFinder, protos []int, k int) (total, good, bad []int, err error) {
	if f == nil {
		return nil, nil, nil, configErrorf("nil neighbor set finder")
	}
	n := f.ds.Len()
	mask := make([]bool, n)
	for _, p := range protos {
		if p < 0 || p >= n {
			return nil, nil, nil, configErrorf("prototype index %d out of range [0,%d)", p, n)
		}
		mask[p] = true
	}
	if err := f.ComputeRestricted(mask, k); err != nil {
		return nil, nil, nil, err
	}
	return f.RestrictedOccurrenceCounts()
}

// classify1NN returns the label of the closest prototype to point i.
// Prototypes equal to i itself are skipped (leave-one-out semantics);
// distance ties go to the prototype appearing first in protos, so sorted
// prototype lists reproduce the lower-index tie-break.
func classify1NN(ds Dataset, dm *DistanceMatrix, protos []int, i int) int {
	best := NoiseLabel
	bestDist := 0.0
	found := false
	for _, p := range protos {
		if p == i || ds.IsNoise(p) {
			continue
		}
		d := dm.Get(i, p)
		if !found || d < bestDist {
			best = ds.LabelOf(p)
			bestDist = d
			found = true
		}
	}
	return best
}
