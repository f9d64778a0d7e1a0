package memory

import (
	"fmt"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
)

// Source is an in-memory ExampleSource, useful for tests and small local
// datasets. Examples are served in insertion order and the source wraps
// around at the end of the dataset.
type Source struct {
	blobNames []string
	shapes    [][]feed.Shape
	examples  [][][]float32
	cursor    int
}

// CreateSource is a factory for in-memory Sources. Each example supplies one
// data slice and one dataset-native shape per blob name.
func CreateSource(blobNames []string, shapes [][]feed.Shape, examples [][][]float32) (*Source, error) {
	if len(blobNames) == 0 {
		return nil, errors.EmptyBlobListError{}
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("Source requires at least one example")
	}
	if len(shapes) != len(examples) {
		return nil, fmt.Errorf("Shape count %d does not match example count %d", len(shapes), len(examples))
	}
	for i := range examples {
		if len(examples[i]) != len(blobNames) || len(shapes[i]) != len(blobNames) {
			return nil, fmt.Errorf("Example %d does not supply %d blobs", i, len(blobNames))
		}
		for ib := range examples[i] {
			if len(examples[i][ib]) != shapes[i][ib].Size() {
				return nil, fmt.Errorf("Example %d blob %s holds %d values, shape %s requires %d",
					i, blobNames[ib], len(examples[i][ib]), shapes[i][ib], shapes[i][ib].Size())
			}
		}
	}
	return &Source{blobNames: blobNames, shapes: shapes, examples: examples}, nil
}

// BlobCount returns the number of named blobs in each example
func (s *Source) BlobCount() int {
	return len(s.blobNames)
}

// BlobName returns the name of the blob at the given index
func (s *Source) BlobName(index int) string {
	return s.blobNames[index]
}

// ExampleCount returns the total number of examples in this Source
func (s *Source) ExampleCount() int {
	return len(s.examples)
}

// FetchNext overwrites the given buffer with the next example, advancing the
// cursor and wrapping around at the end of the dataset
func (s *Source) FetchNext(buffer feed.ExampleBuffer) error {
	for ib := range s.blobNames {
		shape := s.shapes[s.cursor][ib]
		buffer.ReshapeBlob(ib, shape[0], shape[1], shape[2])
		copy(buffer.BlobMemory(ib), s.examples[s.cursor][ib])
	}
	s.cursor = (s.cursor + 1) % len(s.examples)
	return nil
}
