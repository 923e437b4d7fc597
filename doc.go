// Package hubness implements k-nearest-neighbor hubness analysis and
// hubness-aware instance selection.
//
// Hubness is the tendency, pronounced in high-dimensional data, of some
// points to appear disproportionately often in other points' k-nearest-
// neighbor lists. The package computes the full neighbor structure of a
// dataset, derives occurrence ("hubness") statistics from it, evaluates
// clusterings against it, and reduces datasets to prototype subsets.
//
// Basic usage:
//
//	ds, _ := hubness.NewDenseDataset(points, labels)
//	dm, _ := hubness.NewDistanceMatrix(ds, hubness.MatrixOptions{})
//	f, _ := hubness.NewNeighborSetFinder(ds, dm, hubness.FinderOptions{})
//	_ = f.Compute(10)
//	skew, _ := hubness.OccurrenceSkewness(f)
//	// skew > 0 indicates hub formation; individual counts come from
//	// f.OccurrenceCounts(), f.GoodOccurrenceCounts(), f.BadOccurrenceCounts().
//
// Neighbor sets are maintained in ascending distance order with ties
// broken by lower index, so the sets for any smaller k are prefixes of the
// sets built at a larger k; f.SetK shrinks without recomputation.
//
// # Clustering quality
//
// The QualityIndex family scores a cluster assignment against the distance
// matrix under a uniform higher-is-better contract:
//
//	cl, _ := hubness.NewClustering(ds, assignment)
//	dunn, _ := hubness.NewDunnIndex(cl, dm).Validity()
//
// BatchQualityEvaluator evaluates many indices concurrently and isolates
// per-index failures.
//
// # Instance selection
//
// The InstanceSelector family (CNN, GCNN, Wilson72, ENRBF, ICF, Carving,
// HMScore) reduces a dataset to prototype indices. Every selector ends
// with the class-completeness repair, so each observed class keeps at
// least one prototype:
//
//	sel, _ := hubness.NewGCNNSelector(ds, dm, hubness.CNNOptions{})
//	protos, _ := sel.Reduce()
package hubness
