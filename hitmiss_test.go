package hubness

import "testing"

func TestHitMissNetwork_Scenario(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	net, err := NewHitMissNetwork(ds, dm, []int{0, 1, 2, 3, 4, 5}, 2)
	if err != nil {
		t.Fatalf("NewHitMissNetwork: %v", err)
	}

	if net.Len() != 6 {
		t.Fatalf("Len = %d, want 6", net.Len())
	}
	// Point 1 (value 1): hits are its class mates 0 and 2, both at distance
	// 1, tie broken by index.
	if got := net.Hits(1); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("hits of point 1 = %v, want [0 2]", got)
	}
	// Point 2 (value 2): nearest enemies are 3 then 4.
	if got := net.Misses(2); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("misses of point 2 = %v, want [3 4]", got)
	}

	// Hit frequencies mirror the in-class occurrence counts: each cluster
	// member is a hit of its two class mates.
	for pos := 0; pos < net.Len(); pos++ {
		if got := net.HitFrequency(pos); got != 2 {
			t.Errorf("hit frequency of %d = %d, want 2", pos, got)
		}
	}
	// Boundary points 2 and 3 soak up the miss votes; outer points 0 and 5
	// are never anyone's near enemy.
	wantMiss := []int{0, 3, 3, 3, 3, 0}
	for pos, want := range wantMiss {
		if got := net.MissFrequency(pos); got != want {
			t.Errorf("miss frequency of %d = %d, want %d", pos, got, want)
		}
	}
}

func TestHitMissNetwork_Subset(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	// Drop the boundary points; hit lists shrink to the remaining class mate.
	net, err := NewHitMissNetwork(ds, dm, []int{0, 1, 4, 5}, 2)
	if err != nil {
		t.Fatalf("NewHitMissNetwork: %v", err)
	}
	if got := net.Hits(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("hits of active point 0 = %v, want [1]", got)
	}
	if got := net.Misses(1); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("misses of active point 1 = %v, want [4 5]", got)
	}
}

func TestHitMissNetwork_Validation(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)
	if _, err := NewHitMissNetwork(ds, dm, nil, 2); err == nil {
		t.Error("expected error for empty active set")
	}
	if _, err := NewHitMissNetwork(ds, dm, []int{0, 1}, 0); err == nil {
		t.Error("expected error for k = 0")
	}
	if _, err := NewHitMissNetwork(ds, dm, []int{0, 9}, 1); err == nil {
		t.Error("expected error for out-of-range active index")
	}

	noisy, err := NewDenseDataset([][]float64{{0}, {1}}, []int{0, NoiseLabel})
	if err != nil {
		t.Fatalf("NewDenseDataset: %v", err)
	}
	noisyDM := scenarioMatrix(t, noisy)
	if _, err := NewHitMissNetwork(noisy, noisyDM, []int{0, 1}, 1); err == nil {
		t.Error("expected error for noise point in active set")
	}
}
