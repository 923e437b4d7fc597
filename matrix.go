package hubness

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DistanceMatrix stores the pairwise distances of a dataset in
// upper-triangular form: row i holds the distances from point i to points
// i+1..n-1, so row i has n-1-i entries and the full matrix of n points
// occupies n(n-1)/2 floats. The matrix is immutable after construction and
// safe to share across goroutines.
type DistanceMatrix struct {
	rows [][]float64
	n    int
}

// MatrixOptions controls distance matrix construction.
// The zero value means Euclidean metric with one worker per CPU.
type MatrixOptions struct {
	// Metric is the distance function. Default: EuclideanMetric.
	Metric Metric

	// Workers is the number of goroutines used to fill the matrix.
	// 0 means runtime.NumCPU(); 1 forces the sequential path.
	Workers int
}

func (o *MatrixOptions) applyDefaults() {
	if o.Metric == nil {
		o.Metric = EuclideanMetric{}
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
}

// NewDistanceMatrix computes the full upper-triangular distance matrix of
// ds under opts.Metric. With Workers > 1 the row range is partitioned into
// contiguous blocks, one worker per block; workers write only their own
// rows, so no synchronization is needed beyond the final join. A metric
// that produces NaN or a negative value for any pair aborts the whole
// construction; the first such error is returned after all workers finish.
func NewDistanceMatrix(ds Dataset, opts MatrixOptions) (*DistanceMatrix, error) {
	opts.applyDefaults()

	n := ds.Len()
	dm := newEmptyMatrix(n)

	if opts.Workers <= 1 || n <= 1 {
		if err := dm.fillRows(ds, opts.Metric, 0, n); err != nil {
			return nil, err
		}
		return dm, nil
	}

	var g errgroup.Group
	rowsPerWorker := (n + opts.Workers - 1) / opts.Workers

	for w := 0; w < opts.Workers; w++ {
		startRow := w * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, n)
		if startRow >= n {
			break
		}
		g.Go(func() error {
			return dm.fillRows(ds, opts.Metric, startRow, endRow)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dm, nil
}

func newEmptyMatrix(n int) *DistanceMatrix {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n-1-i)
	}
	return &DistanceMatrix{rows: rows, n: n}
}

// fillRows computes rows start..end-1 of the triangular matrix.
func (dm *DistanceMatrix) fillRows(ds Dataset, metric Metric, start, end int) error {
	for i := start; i < end; i++ {
		pi := ds.Point(i)
		row := dm.rows[i]
		for j := i + 1; j < dm.n; j++ {
			d := metric.Distance(pi, ds.Point(j))
			if math.IsNaN(d) || d < 0 {
				return fmt.Errorf("hubness: metric returned invalid distance %v for pair (%d,%d)", d, i, j)
			}
			row[j-i-1] = d
		}
	}
	return nil
}

// NewDistanceMatrixFromRows wraps precomputed upper-triangular rows: row i
// must have n-1-i entries, where n = len(rows). The rows are used directly,
// not copied; callers must not modify them afterwards.
func NewDistanceMatrixFromRows(rows [][]float64) (*DistanceMatrix, error) {
	n := len(rows)
	for i, row := range rows {
		if len(row) != n-1-i {
			return nil, configErrorf("triangular row %d has %d entries, expected %d", i, len(row), n-1-i)
		}
	}
	return &DistanceMatrix{rows: rows, n: n}, nil
}

// Len returns the number of points the matrix covers.
func (dm *DistanceMatrix) Len() int { return dm.n }

// Get returns the symmetric distance d(i,j). Get(i,i) is 0.
func (dm *DistanceMatrix) Get(i, j int) float64 {
	if i == j {
		return 0
	}
	if j < i {
		i, j = j, i
	}
	return dm.rows[i][j-i-1]
}

// WriteTo writes the matrix in its textual interchange format: the first
// line holds the point count n, followed by one comma-separated line per
// point with the n-1-i upper-triangular distances of that point. The last
// point contributes an empty line.
func (dm *DistanceMatrix) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	count, err := fmt.Fprintf(bw, "%d\n", dm.n)
	written += int64(count)
	if err != nil {
		return written, err
	}

	for i := 0; i < dm.n; i++ {
		row := dm.rows[i]
		for j, d := range row {
			if j > 0 {
				if err := bw.WriteByte(','); err != nil {
					return written, err
				}
				written++
			}
			s := strconv.FormatFloat(d, 'g', -1, 64)
			count, err := bw.WriteString(s)
			written += int64(count)
			if err != nil {
				return written, err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}

	return written, bw.Flush()
}

// ReadDistanceMatrix parses a matrix previously written by WriteTo.
func ReadDistanceMatrix(r io.Reader) (*DistanceMatrix, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("hubness: reading matrix header: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("hubness: malformed matrix header %q", strings.TrimSpace(header))
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		want := n - 1 - i
		rows[i] = make([]float64, want)
		if want == 0 {
			// Trailing rows are empty and may be omitted entirely.
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return nil, fmt.Errorf("hubness: reading matrix row %d: %w", i, err)
			}
			continue
		}

		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("hubness: reading matrix row %d: %w", i, err)
		}
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) != want {
			return nil, fmt.Errorf("hubness: matrix row %d has %d values, expected %d", i, len(fields), want)
		}
		for j, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("hubness: matrix row %d value %d: %w", i, j, err)
			}
			rows[i][j] = v
		}
	}

	return &DistanceMatrix{rows: rows, n: n}, nil
}

// Save writes the matrix to the named file in the textual format.
func (dm *DistanceMatrix) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := dm.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadDistanceMatrix reads a matrix from the named file.
func LoadDistanceMatrix(path string) (*DistanceMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDistanceMatrix(f)
}
