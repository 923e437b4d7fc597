package hubness

import (
	"math/rand"
	"testing"
)

func scenarioFinder(t *testing.T, k int) *NeighborSetFinder {
	t.Helper()
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	f, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	if err := f.Compute(k); err != nil {
		t.Fatalf("Compute(%d): %v", k, err)
	}
	return f
}

func TestNeighborSetFinder_Scenario(t *testing.T) {
	f := scenarioFinder(t, 2)

	wantNeighbors := [][]int{
		{1, 2}, // point 0
		{0, 2}, // point 1: ties at distance 1 resolve to lower index
		{1, 0}, // point 2
		{4, 5}, // point 3
		{3, 5}, // point 4
		{4, 3}, // point 5
	}
	for i, want := range wantNeighbors {
		got := f.Neighbors(i)
		for s := range want {
			if got[s] != want[s] {
				t.Errorf("point %d neighbors = %v, want %v", i, got, want)
				break
			}
		}
	}

	occ, err := f.OccurrenceCounts()
	if err != nil {
		t.Fatalf("OccurrenceCounts: %v", err)
	}
	if occ[1] != 2 {
		t.Errorf("occurrence[1] = %d, want 2", occ[1])
	}
}

func TestNeighborSetFinder_OccurrenceConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ds := randomDataset(t, rng, 40, 3, 3)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}
	f, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 2})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	const k = 7
	if err := f.Compute(k); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	occ, err := f.OccurrenceCounts()
	if err != nil {
		t.Fatalf("OccurrenceCounts: %v", err)
	}
	total := 0
	for _, c := range occ {
		total += c
	}
	if total != ds.Len()*k {
		t.Errorf("sum of occurrences = %d, want %d", total, ds.Len()*k)
	}

	good, _ := f.GoodOccurrenceCounts()
	bad, _ := f.BadOccurrenceCounts()
	for i := range occ {
		if good[i]+bad[i] > occ[i] {
			t.Errorf("point %d: good %d + bad %d exceeds total %d", i, good[i], bad[i], occ[i])
		}
	}
}

func TestNeighborSetFinder_PrefixInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ds := randomDataset(t, rng, 30, 2, 2)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}

	big, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	if err := big.Compute(10); err != nil {
		t.Fatalf("Compute(10): %v", err)
	}
	if err := big.SetK(4); err != nil {
		t.Fatalf("SetK(4): %v", err)
	}

	small, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	if err := small.Compute(4); err != nil {
		t.Fatalf("Compute(4): %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		gotIdx := big.Neighbors(i)
		wantIdx := small.Neighbors(i)
		if len(gotIdx) != len(wantIdx) {
			t.Fatalf("point %d: lengths %d vs %d", i, len(gotIdx), len(wantIdx))
		}
		for s := range wantIdx {
			if gotIdx[s] != wantIdx[s] {
				t.Errorf("point %d slot %d: truncated %d, direct %d", i, s, gotIdx[s], wantIdx[s])
			}
		}
	}
}

func TestNeighborSetFinder_SetKGrowRecomputes(t *testing.T) {
	f := scenarioFinder(t, 2)
	if err := f.SetK(4); err != nil {
		t.Fatalf("SetK(4): %v", err)
	}
	if got := len(f.Neighbors(0)); got != 4 {
		t.Errorf("after growing, |neighbors| = %d, want 4", got)
	}
}

// bruteRestricted computes point i's k nearest active neighbors by a full
// scan, as the reference for the seeded path.
func bruteRestricted(dm *DistanceMatrix, active []bool, i, k int) []int {
	buf := newNeighborBuffer(k)
	for j := 0; j < dm.Len(); j++ {
		if j == i || !active[j] {
			continue
		}
		buf.insert(j, dm.Get(i, j))
	}
	idx, _ := buf.take()
	return idx
}

func TestNeighborSetFinder_RestrictedEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ds := randomDataset(t, rng, 50, 3, 2)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}
	f, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	if err := f.Compute(12); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	active := make([]bool, ds.Len())
	for i := range active {
		active[i] = rng.Intn(2) == 0
	}
	active[0] = true // keep the subset non-empty deterministically

	const k = 5
	if err := f.ComputeRestricted(active, k); err != nil {
		t.Fatalf("ComputeRestricted: %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		got, err := f.RestrictedNeighbors(i)
		if err != nil {
			t.Fatalf("RestrictedNeighbors(%d): %v", i, err)
		}
		want := bruteRestricted(dm, active, i, k)
		if len(got) != len(want) {
			t.Fatalf("point %d: lengths %d vs %d", i, len(got), len(want))
		}
		for s := range want {
			if got[s] != want[s] {
				t.Errorf("point %d slot %d: seeded %d, brute %d", i, s, got[s], want[s])
			}
		}
	}
}

func TestNeighborSetFinder_ConsiderNeighbor(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	ds := randomDataset(t, rng, 30, 2, 2)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}
	f, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}
	if err := f.Compute(8); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	active := make([]bool, ds.Len())
	for i := 0; i < 15; i++ {
		active[i] = true
	}
	const k = 4
	if err := f.ComputeRestricted(active, k); err != nil {
		t.Fatalf("ComputeRestricted: %v", err)
	}

	// Add point 20, then remove point 3; the incrementally patched lists
	// must match a from-scratch computation of the final subset.
	if err := f.ConsiderNeighbor(20, false); err != nil {
		t.Fatalf("ConsiderNeighbor(add): %v", err)
	}
	if err := f.ConsiderNeighbor(3, true); err != nil {
		t.Fatalf("ConsiderNeighbor(remove): %v", err)
	}

	final := make([]bool, ds.Len())
	copy(final, active)
	final[20] = true
	final[3] = false

	for i := 0; i < ds.Len(); i++ {
		got, err := f.RestrictedNeighbors(i)
		if err != nil {
			t.Fatalf("RestrictedNeighbors(%d): %v", i, err)
		}
		want := bruteRestricted(dm, final, i, k)
		if len(got) != len(want) {
			t.Fatalf("point %d: lengths %d vs %d", i, len(got), len(want))
		}
		for s := range want {
			if got[s] != want[s] {
				t.Errorf("point %d slot %d: incremental %d, brute %d", i, s, got[s], want[s])
			}
		}
	}
}

func TestNeighborSetFinder_SubFinder(t *testing.T) {
	f := scenarioFinder(t, 4)
	sub, err := f.SubFinder(2)
	if err != nil {
		t.Fatalf("SubFinder: %v", err)
	}
	if sub.K() != 2 {
		t.Errorf("sub.K() = %d, want 2", sub.K())
	}
	for i := 0; i < 6; i++ {
		subN := sub.Neighbors(i)
		parentN := f.Neighbors(i)[:2]
		for s := range subN {
			if subN[s] != parentN[s] {
				t.Errorf("point %d: sub %v, parent prefix %v", i, subN, parentN)
				break
			}
		}
	}
	// The sub finder is independent: shrinking it leaves the parent alone.
	if err := sub.SetK(1); err != nil {
		t.Fatalf("sub.SetK: %v", err)
	}
	if f.K() != 4 {
		t.Errorf("parent k changed to %d", f.K())
	}
}

func TestNeighborSetFinder_Validation(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	f, err := NewNeighborSetFinder(ds, dm, FinderOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewNeighborSetFinder: %v", err)
	}

	if err := f.Compute(0); err == nil {
		t.Error("Compute(0): expected error")
	}
	if err := f.Compute(6); err == nil {
		t.Error("Compute(n): expected error")
	}
	if _, err := f.OccurrenceCounts(); err == nil {
		t.Error("OccurrenceCounts before Compute: expected error")
	}
	if err := f.ComputeRestricted(make([]bool, 6), 1); err == nil {
		t.Error("ComputeRestricted with empty subset: expected error")
	}
}
