package feed

import "fmt"

// BlobDims is the number of axes in every dataset blob shape.
// Example sources always produce image-like, 3-axis blobs.
const BlobDims = 3

// Shape describes the axis lengths of a blob or sequence sample.
// Example sources report shapes in dataset-native order (channels, height,
// width, with width varying fastest), while sequence sample layouts place
// the fastest-varying axis first.
type Shape [BlobDims]int

// Reversed returns a copy of this Shape with its axes in opposite order
func (s Shape) Reversed() Shape {
	return Shape{s[2], s[1], s[0]}
}

// Size returns the total number of elements described by this Shape
func (s Shape) Size() int {
	return s[0] * s[1] * s[2]
}

// String produces a string representation of this Shape
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s[0], s[1], s[2])
}
