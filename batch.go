package hubness

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// BatchResult is the outcome of one quality index evaluation within a
// batch. Score is meaningful only when Err is nil.
type BatchResult struct {
	Name  string
	Score float64
	Err   error
}

// BatchQualityEvaluator runs a set of quality indices over one clustering,
// one goroutine per index, and joins them all before returning. A failing
// or panicking index never aborts the batch: its failure is recorded in
// its own result slot, logged, and the remaining indices still report.
type BatchQualityEvaluator struct {
	indices []QualityIndex
	log     zerolog.Logger
}

// NewBatchQualityEvaluator builds an evaluator over the given indices.
// logger receives one error event per failed index; pass
// zerolog.Nop() to silence it.
func NewBatchQualityEvaluator(indices []QualityIndex, logger zerolog.Logger) *BatchQualityEvaluator {
	return &BatchQualityEvaluator{indices: indices, log: logger}
}

// Evaluate runs every index and returns one result per index, in input
// order. All goroutines are joined before errors are surfaced, so no
// worker is silently abandoned.
func (b *BatchQualityEvaluator) Evaluate() []BatchResult {
	results := make([]BatchResult, len(b.indices))

	var wg sync.WaitGroup
	for i, index := range b.indices {
		wg.Add(1)
		go func(slot int, index QualityIndex) {
			defer wg.Done()
			results[slot] = evaluateOne(index)
		}(i, index)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			b.log.Error().Err(r.Err).Str("index", r.Name).Msg("quality index failed")
		}
	}
	return results
}

// evaluateOne runs a single index, converting a panic into an error so
// one faulty calculator cannot take down the whole batch.
func evaluateOne(index QualityIndex) (result BatchResult) {
	result.Name = index.Name()
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("hubness: index %s panicked: %v", result.Name, r)
		}
	}()
	result.Score, result.Err = index.Validity()
	return result
}

// StandardIndices returns the full matrix-based index family over one
// clustering, ready for batch evaluation. Ground-truth indices (Rand,
// Jaccard, Folkes-Mallows) are included only when the dataset carries
// labels.
func StandardIndices(cl *Clustering, dm *DistanceMatrix) []QualityIndex {
	indices := []QualityIndex{
		NewSilhouetteIndex(cl, dm),
		NewDunnIndex(cl, dm),
		NewCalinskiHarabaszIndex(cl),
		NewCIndex(cl, dm),
		NewTauIndex(cl, dm),
		NewGoodmanKruskalIndex(cl, dm),
		NewMcClainRaoIndex(cl, dm),
		NewPBMIndex(cl),
		NewRSIndex(cl),
		NewSDIndex(cl),
	}
	if cl.ds.NumClasses() > 0 {
		indices = append(indices,
			NewRandIndex(cl),
			NewJaccardIndex(cl),
			NewFolkesMallowsIndex(cl),
		)
	}
	return indices
}
