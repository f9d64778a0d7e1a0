package example

import (
	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
)

// Buffer holds one decoded example's named blobs and their shapes. It is
// overwritten in place by an ExampleSource on each fetch, and blob memory can
// be transferred out via TakeBlob to avoid copying.
type Buffer struct {
	blobNames  []string
	blobs      [][]float32
	blobShapes []feed.Shape
}

// CreateBuffer is a factory for Buffers, allocating one slot per blob name
func CreateBuffer(blobNames []string) (*Buffer, error) {
	if len(blobNames) == 0 {
		return nil, errors.EmptyBlobListError{}
	}
	names := make([]string, len(blobNames))
	copy(names, blobNames)
	return &Buffer{
		blobNames:  names,
		blobs:      make([][]float32, len(names)),
		blobShapes: make([]feed.Shape, len(names)),
	}, nil
}

// BlobCount returns the number of blob slots in this Buffer
func (b *Buffer) BlobCount() int {
	return len(b.blobNames)
}

// ReshapeBlob resizes a blob slot in place. Sources call this before asking
// for memory to copy blob data into.
func (b *Buffer) ReshapeBlob(index int, channels int, height int, width int) {
	b.blobShapes[index] = feed.Shape{channels, height, width}
	size := channels * height * width
	if cap(b.blobs[index]) < size {
		b.blobs[index] = make([]float32, size)
	} else {
		b.blobs[index] = b.blobs[index][:size]
	}
}

// BlobMemory returns the backing memory of a blob slot. Blob data will be
// copied here by the source.
func (b *Buffer) BlobMemory(index int) []float32 {
	return b.blobs[index]
}

// BlobShape returns the dataset-native shape of the blob with the given name
func (b *Buffer) BlobShape(blobName string) (feed.Shape, error) {
	index, err := b.blobIndex(blobName)
	if err != nil {
		return feed.Shape{}, err
	}
	return b.blobShapes[index], nil
}

// TakeBlob transfers ownership of a blob's backing memory out of this Buffer.
// The slot is left empty until the next ReshapeBlob refills it; taking an
// empty slot is an error.
func (b *Buffer) TakeBlob(blobName string) ([]float32, error) {
	index, err := b.blobIndex(blobName)
	if err != nil {
		return nil, err
	}
	if b.blobs[index] == nil {
		return nil, errors.TakenBlobError{Name: blobName}
	}
	data := b.blobs[index]
	b.blobs[index] = nil
	return data, nil
}

// blobIndex returns the slot index for a blob name
func (b *Buffer) blobIndex(blobName string) (int, error) {
	for i, name := range b.blobNames {
		if name == blobName {
			return i, nil
		}
	}
	return -1, errors.UnknownBlobError{Name: blobName}
}
