package hubness

import (
	"math/rand"
	"testing"
)

func TestCNNSelector_Scenario(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	sel, err := NewCNNSelector(ds, dm, CNNOptions{})
	if err != nil {
		t.Fatalf("NewCNNSelector: %v", err)
	}
	protos, err := sel.Reduce()
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	assertSelection(t, ds, protos)

	// The condensed set is consistent: every point is classified correctly
	// by the 1-NN rule over the prototypes.
	for i := 0; i < ds.Len(); i++ {
		if containsInt(protos, i) {
			continue
		}
		if got := classify1NN(ds, dm, protos, i); got != ds.LabelOf(i) {
			t.Errorf("point %d classified as %d by condensed set %v, want %d", i, got, protos, ds.LabelOf(i))
		}
	}
}

func TestCNNSelector_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	ds := randomDataset(t, rng, 40, 2, 3)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}

	run := func(seed int64) []int {
		sel, err := NewCNNSelector(ds, dm, CNNOptions{Rand: rand.New(rand.NewSource(seed))})
		if err != nil {
			t.Fatalf("NewCNNSelector: %v", err)
		}
		protos, err := sel.Reduce()
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}
		return protos
	}

	if a, b := run(5), run(5); !equalInts(a, b) {
		t.Errorf("same seed produced different selections: %v vs %v", a, b)
	}
}

func TestGCNNSelector_Scenario(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	sel, err := NewGCNNSelector(ds, dm, CNNOptions{Rho: 0.3})
	if err != nil {
		t.Fatalf("NewGCNNSelector: %v", err)
	}
	protos, err := sel.Reduce()
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	assertSelection(t, ds, protos)
	if len(protos) > ds.Len() {
		t.Fatalf("selection larger than dataset: %v", protos)
	}

	// Absorption requires the friend prototype to beat the enemy prototype,
	// so the reduced set still classifies everything correctly.
	for i := 0; i < ds.Len(); i++ {
		if containsInt(protos, i) {
			continue
		}
		if got := classify1NN(ds, dm, protos, i); got != ds.LabelOf(i) {
			t.Errorf("point %d classified as %d, want %d", i, got, ds.LabelOf(i))
		}
	}
}

func TestGCNNSelector_RhoValidation(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	if _, err := NewGCNNSelector(ds, dm, CNNOptions{Rho: 1.0}); err == nil {
		t.Error("expected error for Rho = 1")
	}
	if _, err := NewGCNNSelector(ds, dm, CNNOptions{Rho: -0.1}); err == nil {
		t.Error("expected error for negative Rho")
	}
}

func TestGCNNSelector_SingleClass(t *testing.T) {
	ds, err := NewDenseDataset(
		[][]float64{{0}, {1}, {2}, {3}},
		[]int{0, 0, 0, 0},
	)
	if err != nil {
		t.Fatalf("NewDenseDataset: %v", err)
	}
	dm := scenarioMatrix(t, ds)
	sel, err := NewGCNNSelector(ds, dm, CNNOptions{})
	if err != nil {
		t.Fatalf("NewGCNNSelector: %v", err)
	}
	protos, err := sel.Reduce()
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(protos) != 1 {
		t.Errorf("single-class selection = %v, want exactly one prototype", protos)
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
