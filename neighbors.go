package hubness

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// FinderOptions controls neighbor set computation.
// The zero value means Euclidean metric, one worker per CPU, brute-force
// scan over the distance matrix.
type FinderOptions struct {
	// Metric is used when no precomputed distance matrix is supplied, and
	// by the KD-tree path. Default: EuclideanMetric.
	Metric Metric

	// Workers is the number of goroutines for the k-NN build.
	// 0 means runtime.NumCPU(); 1 forces the sequential path.
	Workers int

	// UseKDTree computes neighbor sets through a KD-tree index instead of
	// scanning the distance matrix. Requires a DenseDataset and a
	// Minkowski-family metric (Euclidean, Manhattan, Chebyshev, Minkowski);
	// other metrics break the tree's box lower bounds. Results are
	// identical to the brute-force scan, including tie-break order.
	UseKDTree bool

	// LeafSize is the maximum number of points per KD-tree leaf.
	// Only used with UseKDTree. Default: 40.
	LeafSize int
}

func (o *FinderOptions) applyDefaults() {
	if o.Metric == nil {
		o.Metric = EuclideanMetric{}
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.LeafSize == 0 {
		o.LeafSize = 40
	}
}

// NeighborSetFinder builds and maintains k-nearest-neighbor sets for every
// point of a dataset, and derives occurrence (hubness) statistics from
// them. Neighbor lists are kept in ascending distance order with ties
// broken by lower index, so the sets for any smaller k are exact prefixes
// of the sets built for a larger k: shrinking k is a truncation, never a
// recomputation.
//
// The finder additionally supports neighbor search restricted to an
// "active" subset of points, with incremental maintenance as single points
// enter or leave the subset. Instance selectors use this to track
// prototype-restricted neighbor structure without rebuilding it from
// scratch on every change.
type NeighborSetFinder struct {
	ds      Dataset
	dm      *DistanceMatrix
	metric  Metric
	workers int

	useTree  bool
	leafSize int

	// Full neighbor sets: built for kBuilt, truncated to k on read.
	kBuilt int
	k      int
	idx    [][]int
	dist   [][]float64

	// Occurrence arrays for the current k; rebuilt lazily after any k change.
	occ      []int
	goodOcc  []int
	badOcc   []int
	classOcc [][]int
	occValid bool

	// Restricted (active-subset) neighbor state.
	active      []bool
	numActive   int
	kRestricted int
	rIdx        [][]int
	rDist       [][]float64
}

// NewNeighborSetFinder creates a finder over ds. dm may be nil, in which
// case pairwise distances are evaluated on demand through opts.Metric.
func NewNeighborSetFinder(ds Dataset, dm *DistanceMatrix, opts FinderOptions) (*NeighborSetFinder, error) {
	if ds == nil {
		return nil, configErrorf("nil dataset")
	}
	if dm != nil && dm.Len() != ds.Len() {
		return nil, configErrorf("distance matrix covers %d points, dataset has %d", dm.Len(), ds.Len())
	}
	opts.applyDefaults()

	if opts.UseKDTree {
		if _, ok := ds.(*DenseDataset); !ok {
			return nil, configErrorf("KD-tree neighbor search requires a DenseDataset")
		}
		if !kdTreeSupports(opts.Metric) {
			return nil, configErrorf("KD-tree neighbor search supports only Minkowski-family metrics, got %T", opts.Metric)
		}
	}

	return &NeighborSetFinder{
		ds:       ds,
		dm:       dm,
		metric:   opts.Metric,
		workers:  opts.Workers,
		useTree:  opts.UseKDTree,
		leafSize: opts.LeafSize,
	}, nil
}

// Matrix returns the distance matrix the finder reads from, or nil if
// distances are evaluated through the metric.
func (f *NeighborSetFinder) Matrix() *DistanceMatrix { return f.dm }

// Dataset returns the dataset the finder was built over.
func (f *NeighborSetFinder) Dataset() Dataset { return f.ds }

// distance returns d(i,j) from the matrix when present, otherwise through
// the metric.
func (f *NeighborSetFinder) distance(i, j int) float64 {
	if f.dm != nil {
		return f.dm.Get(i, j)
	}
	if i == j {
		return 0
	}
	return f.metric.Distance(f.ds.Point(i), f.ds.Point(j))
}

// Compute builds the k-nearest-neighbor sets of every point. The point
// range is partitioned into contiguous blocks, one worker per block; each
// worker writes only its own output slots. Any previously built sets and
// derived occurrence arrays are discarded.
func (f *NeighborSetFinder) Compute(k int) error {
	n := f.ds.Len()
	if k < 1 {
		return configErrorf("k must be >= 1, got %d", k)
	}
	if k > n-1 {
		return configErrorf("k = %d exceeds the %d available neighbors", k, n-1)
	}

	if f.useTree {
		if err := f.computeTree(k); err != nil {
			return err
		}
	} else if err := f.computeBrute(k); err != nil {
		return err
	}

	f.kBuilt = k
	f.k = k
	f.occValid = false
	return nil
}

func (f *NeighborSetFinder) computeBrute(k int) error {
	n := f.ds.Len()
	idx := make([][]int, n)
	dist := make([][]float64, n)

	fill := func(start, end int) error {
		for i := start; i < end; i++ {
			buf := newNeighborBuffer(k)
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				d := f.distance(i, j)
				if math.IsNaN(d) {
					return dataErrorf("metric produced NaN for pair (%d,%d)", i, j)
				}
				buf.insert(j, d)
			}
			idx[i], dist[i] = buf.take()
		}
		return nil
	}

	if f.workers <= 1 || n <= 1 {
		if err := fill(0, n); err != nil {
			return err
		}
	} else {
		var g errgroup.Group
		perWorker := (n + f.workers - 1) / f.workers
		for w := 0; w < f.workers; w++ {
			start := w * perWorker
			end := min(start+perWorker, n)
			if start >= n {
				break
			}
			g.Go(func() error { return fill(start, end) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	f.idx = idx
	f.dist = dist
	return nil
}

func (f *NeighborSetFinder) computeTree(k int) error {
	dd := f.ds.(*DenseDataset)
	tree := NewKDTree(dd.flat(), dd.Len(), dd.Dims(), f.metric, f.leafSize)
	idx, dist := tree.QueryKNNAll(k, f.workers)
	f.idx = idx
	f.dist = dist
	return nil
}

// ready reports whether neighbor sets have been built.
func (f *NeighborSetFinder) ready() bool { return f.kBuilt > 0 }

// K returns the current k.
func (f *NeighborSetFinder) K() int { return f.k }

// SetK changes the current k. Shrinking is a cheap truncation that
// preserves the already built sets; growing beyond the built capacity
// triggers a full recomputation.
func (f *NeighborSetFinder) SetK(k int) error {
	if k < 1 {
		return configErrorf("k must be >= 1, got %d", k)
	}
	if !f.ready() {
		return dataErrorf("neighbor sets not computed")
	}
	if k > f.kBuilt {
		return f.Compute(k)
	}
	if k != f.k {
		f.k = k
		f.occValid = false
	}
	return nil
}

// Neighbors returns the indices of the k nearest neighbors of point i in
// ascending distance order. The returned slice is a view into the finder's
// state and must not be modified.
func (f *NeighborSetFinder) Neighbors(i int) []int { return f.idx[i][:f.k] }

// NeighborDistances returns the distances parallel to Neighbors(i).
func (f *NeighborSetFinder) NeighborDistances(i int) []float64 { return f.dist[i][:f.k] }

// deriveOccurrences runs the single O(n*k) pass that counts, for every
// point, how often it appears in other points' current-k neighbor sets,
// split into label-agreeing ("good") and label-disagreeing ("bad")
// occurrences plus a class-conditional breakdown.
func (f *NeighborSetFinder) deriveOccurrences() {
	n := f.ds.Len()
	numClasses := f.ds.NumClasses()

	f.occ = make([]int, n)
	f.goodOcc = make([]int, n)
	f.badOcc = make([]int, n)
	f.classOcc = make([][]int, numClasses)
	for c := range f.classOcc {
		f.classOcc[c] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		li := f.ds.LabelOf(i)
		for _, j := range f.idx[i][:f.k] {
			f.occ[j]++
			if li == NoiseLabel || f.ds.IsNoise(j) {
				continue
			}
			if li == f.ds.LabelOf(j) {
				f.goodOcc[j]++
			} else {
				f.badOcc[j]++
			}
			f.classOcc[li][j]++
		}
	}
	f.occValid = true
}

// OccurrenceCounts returns, per point, the number of current-k neighbor
// lists the point appears in. The slice is owned by the finder.
func (f *NeighborSetFinder) OccurrenceCounts() ([]int, error) {
	if !f.ready() {
		return nil, dataErrorf("neighbor sets not computed")
	}
	if !f.occValid {
		f.deriveOccurrences()
	}
	return f.occ, nil
}

// GoodOccurrenceCounts returns per-point occurrence counts restricted to
// neighbor relations where both endpoints carry the same label.
func (f *NeighborSetFinder) GoodOccurrenceCounts() ([]int, error) {
	if _, err := f.OccurrenceCounts(); err != nil {
		return nil, err
	}
	return f.goodOcc, nil
}

// BadOccurrenceCounts returns per-point occurrence counts restricted to
// neighbor relations where the endpoint labels differ.
func (f *NeighborSetFinder) BadOccurrenceCounts() ([]int, error) {
	if _, err := f.OccurrenceCounts(); err != nil {
		return nil, err
	}
	return f.badOcc, nil
}

// ClassOccurrenceCounts returns the class-conditional occurrence matrix:
// entry [c][j] counts how often point j appears as a neighbor of a point
// labeled c.
func (f *NeighborSetFinder) ClassOccurrenceCounts() ([][]int, error) {
	if _, err := f.OccurrenceCounts(); err != nil {
		return nil, err
	}
	return f.classOcc, nil
}

// SubFinder returns an independent finder sharing the same read-only
// distance matrix and dataset, with its own neighbor arrays truncated to
// k. If k exceeds the built capacity the new finder recomputes from
// scratch.
func (f *NeighborSetFinder) SubFinder(k int) (*NeighborSetFinder, error) {
	if k < 1 {
		return nil, configErrorf("k must be >= 1, got %d", k)
	}
	sub := &NeighborSetFinder{
		ds:       f.ds,
		dm:       f.dm,
		metric:   f.metric,
		workers:  f.workers,
		useTree:  f.useTree,
		leafSize: f.leafSize,
	}
	if !f.ready() || k > f.kBuilt {
		if err := sub.Compute(k); err != nil {
			return nil, err
		}
		return sub, nil
	}

	n := f.ds.Len()
	sub.idx = make([][]int, n)
	sub.dist = make([][]float64, n)
	for i := 0; i < n; i++ {
		sub.idx[i] = append([]int(nil), f.idx[i][:k]...)
		sub.dist[i] = append([]float64(nil), f.dist[i][:k]...)
	}
	sub.kBuilt = k
	sub.k = k
	return sub, nil
}

// ComputeRestricted builds, for every point, the k nearest neighbors drawn
// only from the active subset. When full neighbor sets are already built,
// their active members seed each point's buffer and are skipped during the
// remaining index-range scan; the result is identical to scanning the
// subset from scratch.
func (f *NeighborSetFinder) ComputeRestricted(active []bool, k int) error {
	n := f.ds.Len()
	if len(active) != n {
		return configErrorf("active mask has %d entries, dataset has %d", len(active), n)
	}
	if k < 1 {
		return configErrorf("k must be >= 1, got %d", k)
	}
	numActive := 0
	for _, a := range active {
		if a {
			numActive++
		}
	}
	if numActive == 0 {
		return configErrorf("active subset is empty")
	}
	if k > numActive {
		return configErrorf("k = %d exceeds active subset size %d", k, numActive)
	}

	f.active = append([]bool(nil), active...)
	f.numActive = numActive
	f.kRestricted = k
	f.rIdx = make([][]int, n)
	f.rDist = make([][]float64, n)

	for i := 0; i < n; i++ {
		f.rIdx[i], f.rDist[i] = f.restrictedForPoint(i)
	}
	return nil
}

// restrictedForPoint computes point i's k nearest active neighbors. Active
// members of the already built full neighbor list are reused as a sorted
// seed; the scan then walks only the index intervals between the seeds.
func (f *NeighborSetFinder) restrictedForPoint(i int) ([]int, []float64) {
	n := f.ds.Len()
	buf := newNeighborBuffer(f.kRestricted)

	var seeds []int
	if f.ready() {
		for t := 0; t < f.kBuilt; t++ {
			j := f.idx[i][t]
			if f.active[j] {
				buf.insert(j, f.dist[i][t])
				seeds = append(seeds, j)
			}
		}
		sort.Ints(seeds)
	}

	// Walk the intervals (-1, s0), (s0, s1), ..., (sLast, n): every active
	// candidate outside the seed set gets offered exactly once.
	prev := -1
	for t := 0; t <= len(seeds); t++ {
		hi := n
		if t < len(seeds) {
			hi = seeds[t]
		}
		for j := prev + 1; j < hi; j++ {
			if j == i || !f.active[j] {
				continue
			}
			buf.insert(j, f.distance(i, j))
		}
		prev = hi
	}

	return buf.take()
}

// RestrictedNeighbors returns the active-subset neighbor indices of point
// i, in ascending distance order. Lists may be shorter than k for active
// points when the subset barely covers k (the point itself is not its own
// candidate).
func (f *NeighborSetFinder) RestrictedNeighbors(i int) ([]int, error) {
	if f.rIdx == nil {
		return nil, dataErrorf("restricted neighbor sets not computed")
	}
	return f.rIdx[i], nil
}

// RestrictedNeighborDistances returns the distances parallel to
// RestrictedNeighbors(i).
func (f *NeighborSetFinder) RestrictedNeighborDistances(i int) ([]float64, error) {
	if f.rDist == nil {
		return nil, dataErrorf("restricted neighbor sets not computed")
	}
	return f.rDist[i], nil
}

// ConsiderNeighbor incrementally adds (remove == false) or removes a
// single point from the active subset and patches the restricted neighbor
// lists, amortizing the cost across many single-point updates.
func (f *NeighborSetFinder) ConsiderNeighbor(index int, remove bool) error {
	if f.rIdx == nil {
		return dataErrorf("restricted neighbor sets not computed")
	}
	n := f.ds.Len()
	if index < 0 || index >= n {
		return configErrorf("point index %d out of range [0,%d)", index, n)
	}

	if remove {
		if !f.active[index] {
			return nil
		}
		f.active[index] = false
		f.numActive--
		// Only lists that contained the departing point change; those are
		// rebuilt from the shrunken subset.
		for i := 0; i < n; i++ {
			if i == index {
				continue
			}
			if containsIndex(f.rIdx[i], index) {
				f.rIdx[i], f.rDist[i] = f.restrictedForPoint(i)
			}
		}
		return nil
	}

	if f.active[index] {
		return nil
	}
	f.active[index] = true
	f.numActive++

	for i := 0; i < n; i++ {
		if i == index {
			continue
		}
		d := f.distance(i, index)
		f.rIdx[i], f.rDist[i] = insertBounded(f.rIdx[i], f.rDist[i], f.kRestricted, index, d)
	}
	// The newcomer's own list is drawn from the pre-existing active points.
	f.rIdx[index], f.rDist[index] = f.restrictedForPoint(index)
	return nil
}

// RestrictedOccurrenceCounts derives total, good and bad occurrence counts
// over the restricted neighbor sets, the same pass OccurrenceCounts runs
// over the full sets.
func (f *NeighborSetFinder) RestrictedOccurrenceCounts() (total, good, bad []int, err error) {
	if f.rIdx == nil {
		return nil, nil, nil, dataErrorf("restricted neighbor sets not computed")
	}
	n := f.ds.Len()
	total = make([]int, n)
	good = make([]int, n)
	bad = make([]int, n)
	for i := 0; i < n; i++ {
		li := f.ds.LabelOf(i)
		for _, j := range f.rIdx[i] {
			total[j]++
			if li == NoiseLabel || f.ds.IsNoise(j) {
				continue
			}
			if li == f.ds.LabelOf(j) {
				good[j]++
			} else {
				bad[j]++
			}
		}
	}
	return total, good, bad, nil
}

func containsIndex(list []int, index int) bool {
	for _, v := range list {
		if v == index {
			return true
		}
	}
	return false
}

// insertBounded inserts candidate (index, d) into an ascending
// (distance, index) ordered list capped at k entries, returning the
// possibly reallocated slices.
func insertBounded(idx []int, dist []float64, k, index int, d float64) ([]int, []float64) {
	n := len(idx)
	if n == k {
		last := n - 1
		if d > dist[last] || (d == dist[last] && index > idx[last]) {
			return idx, dist
		}
		n = last
	} else {
		idx = append(idx, 0)
		dist = append(dist, 0)
	}

	pos := n
	for pos > 0 && (dist[pos-1] > d || (dist[pos-1] == d && idx[pos-1] > index)) {
		idx[pos] = idx[pos-1]
		dist[pos] = dist[pos-1]
		pos--
	}
	idx[pos] = index
	dist[pos] = d
	return idx, dist
}
