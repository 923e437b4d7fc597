package hubness

// Classifier predicts a label for a query point from its precomputed
// neighbor list. Selectors use it for leave-one-out error estimates; it is
// not a trainable model.
type Classifier interface {
	Classify(neighborIdx []int, neighborDist []float64) int
}

// MajorityVoter predicts the most frequent label among a neighbor list.
// Noise neighbors do not vote. Vote ties go to the label of the closest
// tied neighbor; with no labeled neighbors, NoiseLabel is returned.
type MajorityVoter struct {
	ds Dataset
}

// NewMajorityVoter builds a vote classifier over ds.
func NewMajorityVoter(ds Dataset) *MajorityVoter { return &MajorityVoter{ds: ds} }

func (v *MajorityVoter) Classify(neighborIdx []int, neighborDist []float64) int {
	votes := make(map[int]int)
	best := NoiseLabel
	bestVotes := 0
	for _, j := range neighborIdx {
		if v.ds.IsNoise(j) {
			continue
		}
		l := v.ds.LabelOf(j)
		votes[l]++
		// Neighbors arrive in ascending distance order, so on a vote tie
		// the label that reached the count first is the closer one.
		if votes[l] > bestVotes {
			best = l
			bestVotes = votes[l]
		}
	}
	return best
}
