package hubness

import (
	"sort"
	"testing"
)

func TestRepairClassCompleteness(t *testing.T) {
	ds := scenarioDataset(t)

	// Class 1 lost every prototype; its lowest-index member comes back.
	got := repairClassCompleteness(ds, []int{2, 0})
	want := []int{0, 2, 3}
	if !equalInts(got, want) {
		t.Errorf("repaired = %v, want %v", got, want)
	}

	// Complete input passes through sorted and deduplicated.
	got = repairClassCompleteness(ds, []int{5, 0, 5})
	want = []int{0, 5}
	if !equalInts(got, want) {
		t.Errorf("repaired = %v, want %v", got, want)
	}
}

func TestRepairClassCompleteness_IgnoresNoiseClasses(t *testing.T) {
	ds, err := NewDenseDataset(
		[][]float64{{0}, {1}, {10}},
		[]int{0, NoiseLabel, 1},
	)
	if err != nil {
		t.Fatalf("NewDenseDataset: %v", err)
	}
	got := repairClassCompleteness(ds, []int{0})
	want := []int{0, 2}
	if !equalInts(got, want) {
		t.Errorf("repaired = %v, want %v", got, want)
	}
}

func TestPrototypeHubness(t *testing.T) {
	f := scenarioFinder(t, 2)
	total, good, bad, err := PrototypeHubness(f, []int{0, 3}, 1)
	if err != nil {
		t.Fatalf("PrototypeHubness: %v", err)
	}

	// With prototypes {0, 3} and k = 1, every point's restricted neighbor
	// is its cluster's prototype, except each prototype whose only option
	// is the other one.
	if total[0] != 3 || total[3] != 3 {
		t.Errorf("total = %v, want 3 occurrences for each prototype", total)
	}
	if good[0] != 2 || bad[0] != 1 {
		t.Errorf("prototype 0: good = %d bad = %d, want 2 and 1", good[0], bad[0])
	}
	if good[3] != 2 || bad[3] != 1 {
		t.Errorf("prototype 3: good = %d bad = %d, want 2 and 1", good[3], bad[3])
	}
	for _, i := range []int{1, 2, 4, 5} {
		if total[i] != 0 {
			t.Errorf("non-prototype %d has %d occurrences, want 0", i, total[i])
		}
	}
}

func TestPrototypeHubness_Validation(t *testing.T) {
	f := scenarioFinder(t, 2)
	if _, _, _, err := PrototypeHubness(f, []int{0, 9}, 1); err == nil {
		t.Error("expected error for out-of-range prototype index")
	}
	if _, _, _, err := PrototypeHubness(nil, []int{0}, 1); err == nil {
		t.Error("expected error for nil finder")
	}
}

func TestMajorityVoter(t *testing.T) {
	ds := scenarioDataset(t)
	voter := NewMajorityVoter(ds)

	if got := voter.Classify([]int{0, 1, 3}, []float64{1, 2, 3}); got != 0 {
		t.Errorf("vote = %d, want 0", got)
	}
	// Vote tie: the label whose neighbor appears first (closer) wins.
	if got := voter.Classify([]int{3, 0}, []float64{1, 1}); got != 1 {
		t.Errorf("tied vote = %d, want label of closer neighbor 1", got)
	}
	if got := voter.Classify(nil, nil); got != NoiseLabel {
		t.Errorf("empty vote = %d, want NoiseLabel", got)
	}
}

func TestClassify1NN(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)

	if got := classify1NN(ds, dm, []int{0, 5}, 2); got != 0 {
		t.Errorf("1-NN label of point 2 = %d, want 0", got)
	}
	// Leave-one-out: the point itself never counts as a prototype.
	if got := classify1NN(ds, dm, []int{2, 3}, 2); got != 1 {
		t.Errorf("LOO 1-NN label of point 2 = %d, want 1", got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// assertSelection checks the shared output contract: ascending, duplicate-
// free, in-range and class-complete.
func assertSelection(t *testing.T, ds Dataset, protos []int) {
	t.Helper()
	if !sort.IntsAreSorted(protos) {
		t.Errorf("selection %v is not ascending", protos)
	}
	seen := make(map[int]bool)
	for _, p := range protos {
		if p < 0 || p >= ds.Len() {
			t.Errorf("selection contains out-of-range index %d", p)
		}
		if seen[p] {
			t.Errorf("selection contains duplicate index %d", p)
		}
		seen[p] = true
	}
	present := make([]bool, ds.NumClasses())
	for _, p := range protos {
		if !ds.IsNoise(p) {
			present[ds.LabelOf(p)] = true
		}
	}
	observed := observedClasses(ds)
	for c, ok := range present {
		if !ok && observed[c] {
			t.Errorf("selection %v lost class %d", protos, c)
		}
	}
}
