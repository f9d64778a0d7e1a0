package memory

import (
	"testing"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/example"
	"github.com/stretchr/testify/require"
)

func createTestSource(t *testing.T) *Source {
	shapes := [][]feed.Shape{
		{{1, 1, 2}},
		{{1, 1, 2}},
		{{1, 1, 3}},
	}
	examples := [][][]float32{
		{{0, 1}},
		{{2, 3}},
		{{4, 5, 6}},
	}
	source, err := CreateSource([]string{"image"}, shapes, examples)
	require.Nil(t, err)
	return source
}

func TestSourceMetadata(t *testing.T) {
	source := createTestSource(t)
	require.Equal(t, 1, source.BlobCount())
	require.Equal(t, "image", source.BlobName(0))
	require.Equal(t, 3, source.ExampleCount())
}

func TestSourceFetchOrderAndWraparound(t *testing.T) {
	source := createTestSource(t)
	buffer, err := example.CreateBuffer([]string{"image"})
	require.Nil(t, err)

	expected := [][]float32{{0, 1}, {2, 3}, {4, 5, 6}, {0, 1}}
	for _, want := range expected {
		require.Nil(t, source.FetchNext(buffer))
		require.Equal(t, want, buffer.BlobMemory(0))
	}
	shape, err := buffer.BlobShape("image")
	require.Nil(t, err)
	require.Equal(t, feed.Shape{1, 1, 2}, shape)
}

func TestCreateSourceValidation(t *testing.T) {
	_, err := CreateSource(nil, nil, nil)
	require.NotNil(t, err)
	_, err = CreateSource([]string{"image"}, nil, nil)
	require.NotNil(t, err)
	// blob size must match its declared shape
	_, err = CreateSource([]string{"image"},
		[][]feed.Shape{{{1, 1, 3}}},
		[][][]float32{{{0, 1}}})
	require.NotNil(t, err)
}
