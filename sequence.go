package feed

// StorageKind describes how the values of a stream are laid out in memory
type StorageKind int

const (
	// DenseStorage indicates that a stream stores a full tensor of values
	DenseStorage StorageKind = iota
	// SparseStorage indicates that a stream stores index/value pairs
	// representing a one-hot encoding over a channel axis
	SparseStorage
)

// String produces a string representation of a StorageKind
func (k StorageKind) String() string {
	if k == SparseStorage {
		return "sparse"
	}
	return "dense"
}

// SequenceData is one packaged sample's data for one stream, either dense or
// sparse. Consumers branch on the concrete type rather than relying on
// virtual dispatch.
type SequenceData interface {
	SampleID() int      // SampleID returns the index of the originating sample within its minibatch
	SampleLayout() Shape // SampleLayout returns the shape of one sample of this sequence
}

// DenseSequenceData is a sequence backed by an owned contiguous buffer,
// holding one sample
type DenseSequenceData struct {
	ID     int
	Layout Shape
	Data   []float32
}

// SampleID returns the index of the originating sample within its minibatch
func (d *DenseSequenceData) SampleID() int {
	return d.ID
}

// SampleLayout returns the shape of one sample of this sequence
func (d *DenseSequenceData) SampleLayout() Shape {
	return d.Layout
}

// SparseSequenceData is a sequence backed by owned index and value buffers,
// representing a one-hot-per-spatial-position encoding over a channel axis
type SparseSequenceData struct {
	ID       int
	Layout   Shape
	Indices  []int32
	Values   []float32
	NnzCount int
}

// SampleID returns the index of the originating sample within its minibatch
func (s *SparseSequenceData) SampleID() int {
	return s.ID
}

// SampleLayout returns the shape of one sample of this sequence
func (s *SparseSequenceData) SampleLayout() Shape {
	return s.Layout
}

// Sequences is the result of a single minibatch request: one list of
// SequenceData per input stream, index-parallel with StreamDescriptions
type Sequences struct {
	Data       [][]SequenceData
	EndOfEpoch bool
}
