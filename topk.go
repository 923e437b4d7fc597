package hubness

import "math"

// neighborBuffer maintains the k closest candidates seen so far, in
// ascending distance order. Ties in distance are broken by lower index, so
// every consumer of neighbor sets observes the same deterministic order
// regardless of insertion sequence.
type neighborBuffer struct {
	idx  []int
	dist []float64
	k    int
}

func newNeighborBuffer(k int) *neighborBuffer {
	return &neighborBuffer{
		idx:  make([]int, 0, k),
		dist: make([]float64, 0, k),
		k:    k,
	}
}

// insert offers a candidate to the buffer. When the buffer is full, the
// candidate replaces the current worst entry only if it orders strictly
// before it under (distance, index).
func (b *neighborBuffer) insert(index int, d float64) {
	n := len(b.idx)
	if n == b.k {
		last := n - 1
		if d > b.dist[last] || (d == b.dist[last] && index > b.idx[last]) {
			return
		}
		n = last
	} else {
		b.idx = append(b.idx, 0)
		b.dist = append(b.dist, 0)
	}

	// Shift worse entries right, then place the candidate.
	pos := n
	for pos > 0 && (b.dist[pos-1] > d || (b.dist[pos-1] == d && b.idx[pos-1] > index)) {
		b.idx[pos] = b.idx[pos-1]
		b.dist[pos] = b.dist[pos-1]
		pos--
	}
	b.idx[pos] = index
	b.dist[pos] = d
}

// full reports whether the buffer holds k entries.
func (b *neighborBuffer) full() bool { return len(b.idx) == b.k }

// worst returns the current k-th distance, or +Inf while the buffer is not
// yet full.
func (b *neighborBuffer) worst() float64 {
	if !b.full() {
		return math.Inf(1)
	}
	return b.dist[len(b.dist)-1]
}

// take returns the accumulated neighbor indices and distances, handing over
// ownership of the underlying slices.
func (b *neighborBuffer) take() ([]int, []float64) {
	return b.idx, b.dist
}
