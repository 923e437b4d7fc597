package hubness

// NoiseLabel marks an instance whose class is unknown. Noise instances keep
// their position in the dataset but are excluded from label-dependent
// statistics and from pairwise sums in the quality indices.
const NoiseLabel = -1

// Dataset is the read interface over an ordered collection of instances.
// Indices 0..Len()-1 are stable for the lifetime of a computation pass.
type Dataset interface {
	// Len returns the number of instances.
	Len() int

	// Point returns the feature vector of instance i. Callers must not
	// modify the returned slice.
	Point(i int) []float64

	// LabelOf returns the class label of instance i, or NoiseLabel.
	LabelOf(i int) int

	// IsNoise reports whether instance i has no known class label.
	IsNoise(i int) bool

	// NumClasses returns the number of distinct class labels. Labels are a
	// dense range 0..NumClasses()-1; NoiseLabel does not count as a class.
	NumClasses() int
}

// DenseDataset stores instances in a flat row-major float64 array with one
// integer label per instance. It is the standard in-memory Dataset used by
// the finder, the selectors and the tests.
type DenseDataset struct {
	data       []float64
	n          int
	dims       int
	labels     []int
	numClasses int
}

// NewDenseDataset builds a DenseDataset from per-instance feature vectors
// and labels. All points must share one dimensionality and labels must be
// NoiseLabel or within 0..max. len(labels) must equal len(points); pass all
// NoiseLabel entries for unlabeled data.
func NewDenseDataset(points [][]float64, labels []int) (*DenseDataset, error) {
	if len(labels) != len(points) {
		return nil, configErrorf("dataset has %d points but %d labels", len(points), len(labels))
	}

	n := len(points)
	dims := 0
	if n > 0 {
		dims = len(points[0])
	}

	data := make([]float64, n*dims)
	for i, p := range points {
		if len(p) != dims {
			return nil, configErrorf("point %d has %d features, expected %d", i, len(p), dims)
		}
		copy(data[i*dims:], p)
	}

	numClasses := 0
	for i, l := range labels {
		if l < 0 && l != NoiseLabel {
			return nil, configErrorf("label %d of point %d is negative and not NoiseLabel", l, i)
		}
		if l+1 > numClasses {
			numClasses = l + 1
		}
	}

	labelsCopy := make([]int, n)
	copy(labelsCopy, labels)

	return &DenseDataset{
		data:       data,
		n:          n,
		dims:       dims,
		labels:     labelsCopy,
		numClasses: numClasses,
	}, nil
}

// Len returns the number of instances.
func (d *DenseDataset) Len() int { return d.n }

// Dims returns the feature dimensionality.
func (d *DenseDataset) Dims() int { return d.dims }

// Point returns the feature vector of instance i as a view into the
// underlying flat array.
func (d *DenseDataset) Point(i int) []float64 {
	return d.data[i*d.dims : (i+1)*d.dims]
}

// LabelOf returns the class label of instance i, or NoiseLabel.
func (d *DenseDataset) LabelOf(i int) int { return d.labels[i] }

// IsNoise reports whether instance i is unlabeled.
func (d *DenseDataset) IsNoise(i int) bool { return d.labels[i] == NoiseLabel }

// NumClasses returns the number of distinct class labels.
func (d *DenseDataset) NumClasses() int { return d.numClasses }

// flat returns the underlying row-major data array. Used by the KD-tree
// neighbor path, which wants the whole block at once.
func (d *DenseDataset) flat() []float64 { return d.data }

// observedClasses returns, for each class label, whether at least one
// non-noise instance carries it.
func observedClasses(ds Dataset) []bool {
	present := make([]bool, ds.NumClasses())
	for i := 0; i < ds.Len(); i++ {
		if !ds.IsNoise(i) {
			present[ds.LabelOf(i)] = true
		}
	}
	return present
}
