package hubness

import (
	"math"
	"sort"
	"sync"
)

// KDTree is a KD-tree spatial index used as the tree-accelerated neighbor
// source for dense point datasets. Points are stored in a flat row-major
// array and reordered internally via an index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
//
// Queries produce the same neighbor order as a brute-force scan, including
// the lower-index tie-break.
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   Metric
	idxArray []int        // permutation: tree-order position → original index
	nodes    []kdNodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
	numNodes      int
}

// kdNodeData describes a single tree node.
type kdNodeData struct {
	idxStart, idxEnd int
	isLeaf           bool
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
func NewKDTree(data []float64, n, dims int, metric Metric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)

	t := &KDTree{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]kdNodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = kdCountNodes(t.nodes, 0, maxNodes)
	}

	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// kdCountNodes counts how many nodes were actually initialized by the build.
func kdCountNodes(nodes []kdNodeData, nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].idxStart == 0 && nodes[nodeID].idxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].isLeaf {
		count += kdCountNodes(nodes, 2*nodeID+1, maxNodes)
		count += kdCountNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with a good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = kdNodeData{idxStart: start, idxEnd: end, isLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = kdNodeData{idxStart: start, idxEnd: end, isLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension,
// breaking coordinate ties by original index to keep the build
// deterministic.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		vi, vj := data[sub[i]*dims+dim], data[sub[j]*dims+dim]
		if vi != vj {
			return vi < vj
		}
		return sub[i] < sub[j]
	})
}

// QueryKNNAll finds, for every point in the tree, its k nearest neighbors
// among the other points (the point itself is excluded). The query range
// is partitioned into contiguous blocks across workers; each worker writes
// only its own output slots.
func (t *KDTree) QueryKNNAll(k, workers int) ([][]int, [][]float64) {
	indices := make([][]int, t.n)
	distances := make([][]float64, t.n)

	queryRange := func(start, end int) {
		for q := start; q < end; q++ {
			query := t.data[q*t.dims : (q+1)*t.dims]
			buf := newNeighborBuffer(k)
			t.knnSearch(0, query, q, buf)
			indices[q], distances[q] = buf.take()
		}
	}

	if workers <= 1 || t.n <= 1 {
		queryRange(0, t.n)
		return indices, distances
	}

	var wg sync.WaitGroup
	perWorker := (t.n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := min(start+perWorker, t.n)
		if start >= t.n {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			queryRange(start, end)
		}(start, end)
	}
	wg.Wait()

	return indices, distances
}

// knnSearch traverses the tree filling buf with the nearest neighbors of
// query, skipping the point at skipIdx (self). The far child is visited
// whenever its lower bound does not exceed the current k-th distance, so
// equal-distance candidates with lower indices are never pruned away.
func (t *KDTree) knnSearch(nodeID int, query []float64, skipIdx int, buf *neighborBuffer) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.idxStart == node.idxEnd && nodeID != 0 {
		return // uninitialized node
	}

	if node.isLeaf {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == skipIdx {
				continue
			}
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			buf.insert(ptIdx, t.metric.Distance(query, pt))
		}
		return
	}

	// Visit the nearer child first.
	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		farRdist = leftRdist
	}

	t.knnSearch(nearChild, query, skipIdx, buf)

	if !buf.full() || farRdist <= distanceToReduced(t.metric, buf.worst()) {
		t.knnSearch(farChild, query, skipIdx, buf)
	}
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the given node, computed from
// the node's axis-aligned bounding box.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) {
		return math.Inf(1)
	}
	dims := t.dims
	base := node * dims

	switch m := t.metric.(type) {
	case ChebyshevMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			d := boxGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
			if d > rdist {
				rdist = d
			}
		}
		return rdist

	case MinkowskiMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			d := boxGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
			rdist += math.Pow(d, m.P)
		}
		return rdist

	case ManhattanMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			rdist += boxGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
		}
		return rdist

	default:
		// Euclidean and Euclidean-like: sum of squared per-dim gaps.
		var rdist float64
		for j := 0; j < dims; j++ {
			d := boxGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
			rdist += d * d
		}
		return rdist
	}
}

// kdTreeSupports reports whether the KD-tree's axis-aligned box bounds are
// valid lower bounds for the metric. Only the Minkowski family decomposes
// per dimension that way; cosine and arbitrary metric functions do not.
func kdTreeSupports(m Metric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// boxGap returns the distance from v to the interval [lo, hi] along one
// dimension, 0 when v lies inside.
func boxGap(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}
