package hubness

// HitMissNetwork holds, for every point of an active subset, its k nearest
// same-class points ("hits") and k nearest different-class points
// ("misses") within that subset, plus the per-point hit/miss occurrence
// frequencies. Iterative selectors rebuild it whenever their active set
// shrinks; construction is cheap relative to a full neighbor pass because
// only the subset is scanned.
type HitMissNetwork struct {
	ds     Dataset
	dm     *DistanceMatrix
	k      int
	active []int // original indices, ascending
	local  []int // original index → local position, -1 outside the subset

	hits     [][]int // local position → original hit indices, ascending distance
	hitDist  [][]float64
	misses   [][]int
	missDist [][]float64

	hitFreq  []int // local position → times selected as a hit
	missFreq []int
}

// NewHitMissNetwork builds the network over the active original indices.
// Lists may be shorter than k when a class has too few active members.
// Noise points cannot participate and are rejected.
func NewHitMissNetwork(ds Dataset, dm *DistanceMatrix, active []int, k int) (*HitMissNetwork, error) {
	if k < 1 {
		return nil, configErrorf("hit-miss neighborhood size must be >= 1, got %d", k)
	}
	if dm == nil {
		return nil, dataErrorf("distance matrix required")
	}
	if len(active) == 0 {
		return nil, configErrorf("active subset is empty")
	}

	n := ds.Len()
	local := make([]int, n)
	for i := range local {
		local[i] = -1
	}
	for pos, orig := range active {
		if orig < 0 || orig >= n {
			return nil, configErrorf("active index %d out of range [0,%d)", orig, n)
		}
		if ds.IsNoise(orig) {
			return nil, configErrorf("active point %d is noise; hit-miss structure needs labels", orig)
		}
		local[orig] = pos
	}

	net := &HitMissNetwork{
		ds:       ds,
		dm:       dm,
		k:        k,
		active:   append([]int(nil), active...),
		local:    local,
		hits:     make([][]int, len(active)),
		hitDist:  make([][]float64, len(active)),
		misses:   make([][]int, len(active)),
		missDist: make([][]float64, len(active)),
		hitFreq:  make([]int, len(active)),
		missFreq: make([]int, len(active)),
	}

	for pos, i := range net.active {
		hitBuf := newNeighborBuffer(k)
		missBuf := newNeighborBuffer(k)
		li := ds.LabelOf(i)
		for _, j := range net.active {
			if j == i {
				continue
			}
			d := dm.Get(i, j)
			if ds.LabelOf(j) == li {
				hitBuf.insert(j, d)
			} else {
				missBuf.insert(j, d)
			}
		}
		net.hits[pos], net.hitDist[pos] = hitBuf.take()
		net.misses[pos], net.missDist[pos] = missBuf.take()
	}

	for pos := range net.active {
		for _, j := range net.hits[pos] {
			net.hitFreq[net.local[j]]++
		}
		for _, j := range net.misses[pos] {
			net.missFreq[net.local[j]]++
		}
	}

	return net, nil
}

// Active returns the network's active original indices.
func (net *HitMissNetwork) Active() []int { return net.active }

// Len returns the number of active points.
func (net *HitMissNetwork) Len() int { return len(net.active) }

// Hits returns the original indices of the nearest same-class points of
// the point at local position pos.
func (net *HitMissNetwork) Hits(pos int) []int { return net.hits[pos] }

// Misses returns the original indices of the nearest different-class
// points of the point at local position pos.
func (net *HitMissNetwork) Misses(pos int) []int { return net.misses[pos] }

// HitFrequency returns how many times the point at local position pos was
// selected as a hit by other active points.
func (net *HitMissNetwork) HitFrequency(pos int) int { return net.hitFreq[pos] }

// MissFrequency returns how many times the point at local position pos was
// selected as a miss by other active points.
func (net *HitMissNetwork) MissFrequency(pos int) int { return net.missFreq[pos] }
