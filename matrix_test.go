package hubness

import (
	"bytes"
	"math"
	"math/rand"
	"testing"
)

func randomDataset(t *testing.T, rng *rand.Rand, n, dims, numClasses int) *DenseDataset {
	t.Helper()
	points := make([][]float64, n)
	labels := make([]int, n)
	for i := range points {
		points[i] = make([]float64, dims)
		for d := range points[i] {
			points[i][d] = rng.NormFloat64()
		}
		labels[i] = rng.Intn(numClasses)
	}
	ds, err := NewDenseDataset(points, labels)
	if err != nil {
		t.Fatalf("NewDenseDataset: %v", err)
	}
	return ds
}

func TestDistanceMatrix_TriangularSymmetry(t *testing.T) {
	ds := scenarioDataset(t)
	dm := scenarioMatrix(t, ds)

	for i := 0; i < ds.Len(); i++ {
		for j := 0; j < ds.Len(); j++ {
			if got, want := dm.Get(i, j), dm.Get(j, i); got != want {
				t.Errorf("Get(%d,%d) = %v, Get(%d,%d) = %v", i, j, got, j, i, want)
			}
		}
		if dm.Get(i, i) != 0 {
			t.Errorf("Get(%d,%d) = %v, want 0", i, i, dm.Get(i, i))
		}
	}

	if d := dm.Get(0, 3); !almostEqual(d, 10, floatTol) {
		t.Errorf("Get(0,3) = %v, want 10", d)
	}
}

func TestDistanceMatrix_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ds := randomDataset(t, rng, 53, 4, 3)

	seq, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 4})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		for j := i + 1; j < ds.Len(); j++ {
			if seq.Get(i, j) != par.Get(i, j) {
				t.Fatalf("pair (%d,%d): sequential %v, parallel %v", i, j, seq.Get(i, j), par.Get(i, j))
			}
		}
	}
}

func TestDistanceMatrix_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ds := randomDataset(t, rng, 17, 3, 2)
	dm, err := NewDistanceMatrix(ds, MatrixOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewDistanceMatrix: %v", err)
	}

	var buf bytes.Buffer
	if _, err := dm.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	reloaded, err := ReadDistanceMatrix(&buf)
	if err != nil {
		t.Fatalf("ReadDistanceMatrix: %v", err)
	}
	if reloaded.Len() != dm.Len() {
		t.Fatalf("Len = %d, want %d", reloaded.Len(), dm.Len())
	}
	for i := 0; i < dm.Len(); i++ {
		for j := i + 1; j < dm.Len(); j++ {
			if !almostEqual(reloaded.Get(i, j), dm.Get(i, j), 1e-12) {
				t.Fatalf("pair (%d,%d): reloaded %v, original %v", i, j, reloaded.Get(i, j), dm.Get(i, j))
			}
		}
	}
}

func TestDistanceMatrix_InvalidMetricAborts(t *testing.T) {
	ds := scenarioDataset(t)
	bad := MetricFunc(func(a, b []float64) float64 { return math.NaN() })

	if _, err := NewDistanceMatrix(ds, MatrixOptions{Metric: bad, Workers: 1}); err == nil {
		t.Error("expected error for NaN metric, got nil")
	}
	if _, err := NewDistanceMatrix(ds, MatrixOptions{Metric: bad, Workers: 3}); err == nil {
		t.Error("expected error for NaN metric (parallel), got nil")
	}
}

func TestNewDistanceMatrixFromRows_Validation(t *testing.T) {
	if _, err := NewDistanceMatrixFromRows([][]float64{{1, 2}, {3}, {}}); err != nil {
		t.Errorf("valid rows rejected: %v", err)
	}
	if _, err := NewDistanceMatrixFromRows([][]float64{{1}, {3}, {}}); err == nil {
		t.Error("expected error for malformed row lengths")
	}
}

func TestReadDistanceMatrix_MalformedHeader(t *testing.T) {
	if _, err := ReadDistanceMatrix(bytes.NewBufferString("not-a-number\n")); err == nil {
		t.Error("expected error for malformed header")
	}
}
