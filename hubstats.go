package hubness

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Hubness statistics: estimators over the occurrence arrays a
// NeighborSetFinder derives. Each estimator is a pure function of its
// inputs; per-k series reuse the finder's cheap shrink-k transition
// instead of rebuilding neighbor sets.

// OccurrenceSkewness returns the skewness (standardized third moment,
// sample-adjusted) of the current-k occurrence count distribution. Strong
// positive skew is the signature of hubness.
func OccurrenceSkewness(f *NeighborSetFinder) (float64, error) {
	occ, err := f.OccurrenceCounts()
	if err != nil {
		return 0, err
	}
	return stat.Skew(intsToFloats(occ), nil), nil
}

// OccurrenceKurtosis returns the kurtosis (standardized fourth moment) of
// the current-k occurrence count distribution.
func OccurrenceKurtosis(f *NeighborSetFinder) (float64, error) {
	occ, err := f.OccurrenceCounts()
	if err != nil {
		return 0, err
	}
	return stat.ExKurtosis(intsToFloats(occ), nil) + 3, nil
}

// OccurrenceVariance returns the variance of the current-k occurrence
// counts.
func OccurrenceVariance(f *NeighborSetFinder) (float64, error) {
	occ, err := f.OccurrenceCounts()
	if err != nil {
		return 0, err
	}
	return stat.Variance(intsToFloats(occ), nil), nil
}

// OccurrenceSkewnessSeries returns one skewness value per k in 1..f.K(),
// derived by shrinking k step by step. The finder is left at its original
// k. Entry [k-1] holds the value for k.
func OccurrenceSkewnessSeries(f *NeighborSetFinder) ([]float64, error) {
	return occurrenceSeries(f, OccurrenceSkewness)
}

// OccurrenceKurtosisSeries returns one kurtosis value per k in 1..f.K(),
// with the same shape and finder semantics as OccurrenceSkewnessSeries.
func OccurrenceKurtosisSeries(f *NeighborSetFinder) ([]float64, error) {
	return occurrenceSeries(f, OccurrenceKurtosis)
}

// occurrenceSeries evaluates a per-finder estimator at every k from f.K()
// down to 1, using the cheap shrink transition, and restores the original k.
func occurrenceSeries(f *NeighborSetFinder, est func(*NeighborSetFinder) (float64, error)) ([]float64, error) {
	if !f.ready() {
		return nil, dataErrorf("neighbor sets not computed")
	}
	kTop := f.K()
	series := make([]float64, kTop)
	for k := kTop; k >= 1; k-- {
		if err := f.SetK(k); err != nil {
			return nil, err
		}
		v, err := est(f)
		if err != nil {
			return nil, err
		}
		series[k-1] = v
	}
	if err := f.SetK(kTop); err != nil {
		return nil, err
	}
	return series, nil
}

// RareOccurrenceFractions returns, for thresholds 1..maxThreshold, the
// fraction of points whose occurrence count is below the threshold.
// Entry [t-1] is the fraction of points occurring fewer than t times;
// entry [0] is the fraction of orphans (never selected as a neighbor).
func RareOccurrenceFractions(f *NeighborSetFinder, maxThreshold int) ([]float64, error) {
	if maxThreshold < 1 {
		return nil, configErrorf("maxThreshold must be >= 1, got %d", maxThreshold)
	}
	occ, err := f.OccurrenceCounts()
	if err != nil {
		return nil, err
	}
	n := len(occ)
	fractions := make([]float64, maxThreshold)
	for _, c := range occ {
		for t := c + 1; t <= maxThreshold; t++ {
			fractions[t-1]++
		}
	}
	for t := range fractions {
		fractions[t] /= float64(n)
	}
	return fractions, nil
}

// EntropyStats aggregates a per-point entropy array.
type EntropyStats struct {
	Mean     float64
	StdDev   float64
	Skewness float64
	Kurtosis float64
}

// NeighborLabelEntropies returns, per point, the Shannon entropy (in bits)
// of the label distribution over its direct k-neighbor list and over its
// reverse neighbor list (the labels of points that have it as a neighbor).
// Points with an empty reverse list get reverse entropy 0. Noise neighbors
// are skipped.
func NeighborLabelEntropies(f *NeighborSetFinder) (direct, reverse []float64, err error) {
	if !f.ready() {
		return nil, nil, dataErrorf("neighbor sets not computed")
	}
	n := f.ds.Len()
	numClasses := f.ds.NumClasses()
	if numClasses == 0 {
		return nil, nil, dataErrorf("dataset carries no class labels")
	}

	direct = make([]float64, n)
	reverse = make([]float64, n)
	counts := make([]float64, numClasses)
	revCounts := make([][]float64, n)

	for i := 0; i < n; i++ {
		for c := range counts {
			counts[c] = 0
		}
		total := 0.0
		li := f.ds.LabelOf(i)
		for _, j := range f.Neighbors(i) {
			if !f.ds.IsNoise(j) {
				counts[f.ds.LabelOf(j)]++
				total++
			}
			if li != NoiseLabel {
				if revCounts[j] == nil {
					revCounts[j] = make([]float64, numClasses)
				}
				revCounts[j][li]++
			}
		}
		direct[i] = shannonBits(counts, total)
	}

	for j := 0; j < n; j++ {
		if revCounts[j] == nil {
			continue
		}
		total := 0.0
		for _, c := range revCounts[j] {
			total += c
		}
		reverse[j] = shannonBits(revCounts[j], total)
	}

	return direct, reverse, nil
}

// shannonBits computes the Shannon entropy in bits of the distribution
// obtained by normalizing counts by total. Zero total yields 0.
func shannonBits(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	return stat.Entropy(p) / math.Ln2
}

// AggregateEntropy summarizes a per-point entropy array into
// mean/stdev/skew/kurtosis.
func AggregateEntropy(entropies []float64) EntropyStats {
	return EntropyStats{
		Mean:     stat.Mean(entropies, nil),
		StdDev:   stat.StdDev(entropies, nil),
		Skewness: stat.Skew(entropies, nil),
		Kurtosis: stat.ExKurtosis(entropies, nil) + 3,
	}
}

// EntropyGap returns the mean signed difference between direct and reverse
// neighbor label entropies across points.
func EntropyGap(direct, reverse []float64) float64 {
	var sum float64
	for i := range direct {
		sum += direct[i] - reverse[i]
	}
	return sum / float64(len(direct))
}

// ClassHubnessMatrix returns, for each ordered class pair (c1, c2), the
// fraction of c1-labeled points' neighbor slots occupied by c2-labeled
// neighbors. With weighted set, each slot contributes 1/(1+d) instead of 1,
// softening the influence of distant neighbors; rows are normalized either
// way. Rows of classes with no labeled points are all zero.
func ClassHubnessMatrix(f *NeighborSetFinder, weighted bool) ([][]float64, error) {
	if !f.ready() {
		return nil, dataErrorf("neighbor sets not computed")
	}
	numClasses := f.ds.NumClasses()
	if numClasses == 0 {
		return nil, dataErrorf("dataset carries no class labels")
	}

	matrix := make([][]float64, numClasses)
	rowTotals := make([]float64, numClasses)
	for c := range matrix {
		matrix[c] = make([]float64, numClasses)
	}

	n := f.ds.Len()
	for i := 0; i < n; i++ {
		li := f.ds.LabelOf(i)
		if li == NoiseLabel {
			continue
		}
		neighbors := f.Neighbors(i)
		dists := f.NeighborDistances(i)
		for t, j := range neighbors {
			if f.ds.IsNoise(j) {
				continue
			}
			w := 1.0
			if weighted {
				w = 1.0 / (1.0 + dists[t])
			}
			matrix[li][f.ds.LabelOf(j)] += w
			rowTotals[li] += w
		}
	}

	for c := range matrix {
		if rowTotals[c] == 0 {
			continue
		}
		for c2 := range matrix[c] {
			matrix[c][c2] /= rowTotals[c]
		}
	}
	return matrix, nil
}

// TopHubStats describes the m highest-occurrence points: their indices,
// the maximum pairwise distance among them (diameter) and the mean
// pairwise distance (cohesion).
type TopHubStats struct {
	Hubs     []int
	Diameter float64
	Cohesion float64
}

// TopHubs returns diameter and cohesion of the m points with the highest
// current-k occurrence counts. Occurrence ties are broken by lower index.
func TopHubs(f *NeighborSetFinder, m int) (TopHubStats, error) {
	occ, err := f.OccurrenceCounts()
	if err != nil {
		return TopHubStats{}, err
	}
	n := len(occ)
	if m < 1 || m > n {
		return TopHubStats{}, configErrorf("m must be in [1,%d], got %d", n, m)
	}

	// Bounded selection of the m largest counts, reusing the neighbor
	// buffer with negated counts as "distances".
	buf := newNeighborBuffer(m)
	for i, c := range occ {
		buf.insert(i, -float64(c))
	}
	hubs, _ := buf.take()

	var diameter, sum float64
	pairs := 0
	for a := 0; a < len(hubs); a++ {
		for b := a + 1; b < len(hubs); b++ {
			d := f.distance(hubs[a], hubs[b])
			if d > diameter {
				diameter = d
			}
			sum += d
			pairs++
		}
	}
	cohesion := 0.0
	if pairs > 0 {
		cohesion = sum / float64(pairs)
	}
	return TopHubStats{Hubs: hubs, Diameter: diameter, Cohesion: cohesion}, nil
}

func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
