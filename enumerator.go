package feed

// FullDatasetSize is a sentinel total-sample value for EpochConfiguration,
// meaning "use every example in the dataset for this epoch".
const FullDatasetSize = -1

// EpochConfiguration describes one epoch of sample consumption, as requested
// by the training loop at epoch start
type EpochConfiguration struct {
	WorkerRank        int // 0-indexed rank of this worker
	WorkerCount       int // total number of cooperating workers
	MinibatchSize     int // total samples per minibatch, across all workers
	TotalEpochSamples int // total samples in the epoch, or FullDatasetSize
}

// ReaderConfiguration carries the worker identity and minibatch size for
// mid-epoch consistency checks
type ReaderConfiguration struct {
	WorkerRank    int
	WorkerCount   int
	MinibatchSize int
}

// A SequenceEnumerator pulls examples from an ExampleSource and yields
// batched sequences for a minibatch-assembling packer. Enumerators are
// single-threaded, synchronous and pull-based; they are not reentrant.
type SequenceEnumerator interface {
	// StreamDescriptions returns the stable list of input stream metadata,
	// which is what the packer consumes
	StreamDescriptions() []StreamDescription
	// OutputStreamDescriptions returns the stable list of output stream
	// metadata: structurally identical to the input streams, but always dense
	OutputStreamDescriptions() []StreamDescription
	// StartEpoch computes this worker's share of a fresh epoch. The previous
	// epoch must have been fully consumed.
	StartEpoch(conf EpochConfiguration) error
	// SetConfiguration is an idempotent consistency check against the
	// configuration recorded by StartEpoch
	SetConfiguration(conf ReaderConfiguration) error
	// GetNextSequences serves one minibatch request, returning one sequence
	// list per input stream and an end-of-epoch flag. The requested count
	// must equal the configured minibatch size.
	GetNextSequences(totalSampleCount int) (*Sequences, error)
}
