package feed

// An ExampleBuffer receives one decoded example's blobs from an
// ExampleSource. Sources reshape each slot before filling its memory.
type ExampleBuffer interface {
	// ReshapeBlob resizes a blob slot in place to hold
	// channels*height*width values
	ReshapeBlob(index int, channels int, height int, width int)
	// BlobMemory returns the backing memory of a blob slot, to be
	// overwritten by the source
	BlobMemory(index int) []float32
}

// An ExampleSource is a source of decoded examples which will be converted
// into sequences by a Producer. Sources decode images, apply transforms and
// produce raw per-blob buffers; they may employ internal worker threads for
// decode/IO, but expose only a blocking fetch.
type ExampleSource interface {
	// BlobCount returns the number of named blobs in each example
	BlobCount() int
	// BlobName returns the name of the blob at the given index
	BlobName(index int) string
	// ExampleCount returns the total number of examples in the dataset
	ExampleCount() int
	// FetchNext overwrites the given buffer's blobs and shapes in place,
	// advancing the source's internal cursor and wrapping around at the end
	// of the dataset
	FetchNext(buffer ExampleBuffer) error
}
