package hubness

import "math"

// pairCounts tallies, over all pairs of labeled, assigned points, how the
// clustering agrees with the ground-truth labels:
//
//	a — same cluster, same label
//	b — same cluster, different label
//	c — different cluster, same label
//	d — different cluster, different label
//
// Counted through the cluster×label contingency table, not by explicit
// pair enumeration.
func pairCounts(cl *Clustering) (a, b, c, d float64, err error) {
	ds := cl.ds
	numClasses := ds.NumClasses()
	if numClasses == 0 {
		return 0, 0, 0, 0, dataErrorf("ground-truth labels required")
	}

	contingency := make([][]float64, cl.NumClusters())
	for i := range contingency {
		contingency[i] = make([]float64, numClasses)
	}
	clusterSums := make([]float64, cl.NumClusters())
	labelSums := make([]float64, numClasses)
	total := 0.0

	for i, ci := range cl.Assignment {
		if ci == Unassigned || ds.IsNoise(i) {
			continue
		}
		li := ds.LabelOf(i)
		contingency[ci][li]++
		clusterSums[ci]++
		labelSums[li]++
		total++
	}
	if total == 0 {
		return 0, 0, 0, 0, dataErrorf("no labeled, assigned points")
	}

	choose2 := func(v float64) float64 { return v * (v - 1) / 2 }

	var sumCells, sumClusters, sumLabels float64
	for ci := range contingency {
		for li := range contingency[ci] {
			sumCells += choose2(contingency[ci][li])
		}
		sumClusters += choose2(clusterSums[ci])
	}
	for li := range labelSums {
		sumLabels += choose2(labelSums[li])
	}

	a = sumCells
	b = sumClusters - sumCells
	c = sumLabels - sumCells
	d = choose2(total) - a - b - c
	return a, b, c, d, nil
}

// RandIndex is the Rand statistic (a+d)/(a+b+c+d) of the clustering
// against the dataset's ground-truth labels.
type RandIndex struct {
	cl *Clustering
}

func NewRandIndex(cl *Clustering) *RandIndex { return &RandIndex{cl: cl} }

func (r *RandIndex) Name() string { return "rand" }

func (r *RandIndex) Validity() (float64, error) {
	if r.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	a, b, c, d, err := pairCounts(r.cl)
	if err != nil {
		return 0, err
	}
	total := a + b + c + d
	if total == 0 {
		return 0, nil
	}
	return (a + d) / total, nil
}

// JaccardIndex is a/(a+b+c) of the clustering against ground-truth labels.
type JaccardIndex struct {
	cl *Clustering
}

func NewJaccardIndex(cl *Clustering) *JaccardIndex { return &JaccardIndex{cl: cl} }

func (j *JaccardIndex) Name() string { return "jaccard" }

func (j *JaccardIndex) Validity() (float64, error) {
	if j.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	a, b, c, _, err := pairCounts(j.cl)
	if err != nil {
		return 0, err
	}
	if a+b+c == 0 {
		return 0, nil
	}
	return a / (a + b + c), nil
}

// FolkesMallowsIndex is a/sqrt((a+b)(a+c)) of the clustering against
// ground-truth labels.
type FolkesMallowsIndex struct {
	cl *Clustering
}

func NewFolkesMallowsIndex(cl *Clustering) *FolkesMallowsIndex {
	return &FolkesMallowsIndex{cl: cl}
}

func (f *FolkesMallowsIndex) Name() string { return "folkes-mallows" }

func (f *FolkesMallowsIndex) Validity() (float64, error) {
	if f.cl == nil {
		return 0, configErrorf("nil clustering")
	}
	a, b, c, _, err := pairCounts(f.cl)
	if err != nil {
		return 0, err
	}
	denom := math.Sqrt((a + b) * (a + c))
	if denom == 0 {
		return 0, nil
	}
	return a / denom, nil
}
