package contract

import (
	"testing"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
	"github.com/go-feed/feed/example"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func createSampleBuffer(t *testing.T) *example.Buffer {
	buffer, err := example.CreateBuffer([]string{"image", "label"})
	require.Nil(t, err)
	// dataset-native shapes: (channels, height, width)
	buffer.ReshapeBlob(0, 3, 2, 4)
	buffer.ReshapeBlob(1, 1, 2, 4)
	return buffer
}

func TestDeriveStreams(t *testing.T) {
	decls := []feed.StreamDeclaration{
		{Name: "features", DatasetBlobName: "image", Storage: feed.DenseStorage},
		{Name: "targets", DatasetBlobName: "label", Storage: feed.SparseStorage, DenseDimension: 5,
			Ignore: &feed.IgnoreSpec{StreamName: "ignoreMask", Label: 255}},
	}
	table, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.Nil(t, err)
	require.Equal(t, 2, len(table.Contracts()))
	require.Equal(t, 5, table.MaxDimension())

	inputs := table.InputStreams()
	require.Equal(t, 3, len(inputs))
	require.Equal(t, 0, inputs[0].ID)
	require.Equal(t, "features", inputs[0].Name)
	require.Equal(t, feed.DenseStorage, inputs[0].Storage)
	require.Equal(t, feed.Shape{4, 2, 3}, inputs[0].SampleLayout) // axis-reversed
	require.Equal(t, 1, inputs[1].ID)
	require.Equal(t, "targets", inputs[1].Name)
	require.Equal(t, feed.SparseStorage, inputs[1].Storage)
	require.Equal(t, feed.Shape{4, 2, 5}, inputs[1].SampleLayout) // declared channel axis
	require.Equal(t, 2, inputs[2].ID)
	require.Equal(t, "ignoreMask", inputs[2].Name)
	require.Equal(t, feed.DenseStorage, inputs[2].Storage)
	require.Equal(t, feed.Shape{4, 2, 1}, inputs[2].SampleLayout)

	// output streams are structurally identical but always dense
	outputs := table.OutputStreams()
	require.Equal(t, 3, len(outputs))
	for i := range outputs {
		require.Equal(t, inputs[i].ID, outputs[i].ID)
		require.Equal(t, inputs[i].Name, outputs[i].Name)
		require.Equal(t, inputs[i].SampleLayout, outputs[i].SampleLayout)
		require.Equal(t, feed.DenseStorage, outputs[i].Storage)
	}
}

func TestDeriveEmptyDeclarations(t *testing.T) {
	_, err := Derive(nil, []string{"image"}, createSampleBuffer(t))
	require.IsType(t, errors.EmptyStreamListError{}, err)
}

func TestDeriveUnknownBlob(t *testing.T) {
	decls := []feed.StreamDeclaration{
		{Name: "features", DatasetBlobName: "missing", Storage: feed.DenseStorage},
	}
	_, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.IsType(t, errors.UnknownBlobError{}, merr.Errors[0])
}

func TestDeriveSparseShape(t *testing.T) {
	// a sparse stream must reference a single-channel blob
	decls := []feed.StreamDeclaration{
		{Name: "targets", DatasetBlobName: "image", Storage: feed.SparseStorage, DenseDimension: 5},
	}
	_, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.IsType(t, errors.SparseShapeError{}, merr.Errors[0])
}

func TestDeriveIgnoreOnDense(t *testing.T) {
	decls := []feed.StreamDeclaration{
		{Name: "features", DatasetBlobName: "image", Storage: feed.DenseStorage,
			Ignore: &feed.IgnoreSpec{StreamName: "ignoreMask", Label: 255}},
	}
	_, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.IsType(t, errors.IgnoreOnDenseError{}, merr.Errors[0])
}

func TestDeriveInvalidDimension(t *testing.T) {
	decls := []feed.StreamDeclaration{
		{Name: "targets", DatasetBlobName: "label", Storage: feed.SparseStorage},
	}
	_, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.IsType(t, errors.InvalidDimensionError{}, merr.Errors[0])
}

func TestDeriveAggregatesErrors(t *testing.T) {
	// a broken configuration surfaces every problem at once
	decls := []feed.StreamDeclaration{
		{Name: "features", DatasetBlobName: "missing", Storage: feed.DenseStorage},
		{Name: "targets", DatasetBlobName: "image", Storage: feed.SparseStorage, DenseDimension: 5},
	}
	_, err := Derive(decls, []string{"image", "label"}, createSampleBuffer(t))
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Equal(t, 2, len(merr.Errors))
}
