package feed

// IgnoreSpec declares a companion dense mask stream for a sparse
// classification stream, marking spatial positions whose class equals Label
// to be excluded from loss/metric computation
type IgnoreSpec struct {
	StreamName string // name of the derived companion ignore stream
	Label      int    // class value which marks a position as ignored
}

// StreamDeclaration declares a desired output stream, mapping it to a source
// dataset blob and its storage treatment. Declarations are supplied at
// construction and are immutable afterwards.
type StreamDeclaration struct {
	Name            string      // name of the stream, as consumed by the packer
	DatasetBlobName string      // name of the dataset blob backing the stream
	Storage         StorageKind // storage kind of the backing blob
	DenseDimension  int         // for sparse streams, the channel count of the one-hot expansion
	Ignore          *IgnoreSpec // optional ignore companion, sparse streams only
}

// StreamDescription is derived stream metadata, exposed to the packer.
// Stream lists are index-parallel and fixed for the lifetime of a producer.
type StreamDescription struct {
	ID           int         // index of this stream within its list
	Name         string      // name of the stream
	Storage      StorageKind // storage kind of emitted sequences
	SampleLayout Shape       // shape of one sample, fastest-varying axis first
}
