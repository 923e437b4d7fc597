package hubness

import "sort"

// CIndex is 1 - C, where C is the normalized rank-sum of intra-cluster
// distances: C = (S - Smin)/(Smax - Smin), S the sum of intra-cluster
// distances and Smin/Smax the smallest and largest possible sums over the
// same number of pairwise distances. Fewer than 2 non-empty clusters, no
// intra pairs, or Smax == Smin yields the sentinel 0.
type CIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

func NewCIndex(cl *Clustering, dm *DistanceMatrix) *CIndex {
	return &CIndex{cl: cl, dm: dm}
}

func (c *CIndex) Name() string { return "c-index" }

func (c *CIndex) Validity() (float64, error) {
	if err := checkIndexInputs(c.cl, c.dm); err != nil {
		return 0, err
	}
	if len(c.cl.nonEmpty()) < 2 {
		return 0, nil
	}

	intra, inter := splitPairDistances(c.cl, c.dm)
	nw := len(intra)
	if nw == 0 {
		return 0, nil
	}

	var s float64
	all := make([]float64, 0, nw+len(inter))
	for _, d := range intra {
		s += d
		all = append(all, d)
	}
	all = append(all, inter...)
	sort.Float64s(all)

	var sMin, sMax float64
	for i := 0; i < nw; i++ {
		sMin += all[i]
		sMax += all[len(all)-1-i]
	}
	if sMax == sMin {
		return 0, nil
	}
	return 1 - (s-sMin)/(sMax-sMin), nil
}

// TauIndex is the rank-correlation style validity score
// (s+ - s-) / (Nw * Nb): the normalized excess of concordant over
// discordant (intra, inter) distance pairs, computed by sorted-merge
// counting. Values lie in [-1, 1]. Fewer than 2 non-empty clusters or no
// comparable pairs yields the sentinel 0.
type TauIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

func NewTauIndex(cl *Clustering, dm *DistanceMatrix) *TauIndex {
	return &TauIndex{cl: cl, dm: dm}
}

func (t *TauIndex) Name() string { return "tau" }

func (t *TauIndex) Validity() (float64, error) {
	if err := checkIndexInputs(t.cl, t.dm); err != nil {
		return 0, err
	}
	if len(t.cl.nonEmpty()) < 2 {
		return 0, nil
	}

	intra, inter := splitPairDistances(t.cl, t.dm)
	if len(intra) == 0 || len(inter) == 0 {
		return 0, nil
	}
	concordant, discordant, _ := concordanceCounts(intra, inter)
	total := float64(len(intra)) * float64(len(inter))
	return (float64(concordant) - float64(discordant)) / total, nil
}

// GoodmanKruskalIndex is the Goodman-Kruskal gamma statistic
// (s+ - s-) / (s+ + s-) over (intra, inter) distance pairs. Fewer than 2
// non-empty clusters or s+ + s- == 0 yields the sentinel 0.
type GoodmanKruskalIndex struct {
	cl *Clustering
	dm *DistanceMatrix
}

func NewGoodmanKruskalIndex(cl *Clustering, dm *DistanceMatrix) *GoodmanKruskalIndex {
	return &GoodmanKruskalIndex{cl: cl, dm: dm}
}

func (g *GoodmanKruskalIndex) Name() string { return "goodman-kruskal" }

func (g *GoodmanKruskalIndex) Validity() (float64, error) {
	if err := checkIndexInputs(g.cl, g.dm); err != nil {
		return 0, err
	}
	if len(g.cl.nonEmpty()) < 2 {
		return 0, nil
	}

	intra, inter := splitPairDistances(g.cl, g.dm)
	if len(intra) == 0 || len(inter) == 0 {
		return 0, nil
	}
	concordant, discordant, _ := concordanceCounts(intra, inter)
	denom := float64(concordant) + float64(discordant)
	if denom == 0 {
		return 0, nil
	}
	return (float64(concordant) - float64(discordant)) / denom, nil
}
