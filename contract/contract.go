package contract

import (
	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
	"github.com/go-feed/feed/example"
	multierror "github.com/hashicorp/go-multierror"
)

// Contract maps one declared output stream to a source dataset blob and its
// storage/shape treatment. Contracts are immutable after derivation; their
// order defines stream indices.
type Contract struct {
	OutputName      string
	DatasetBlobName string
	Storage         feed.StorageKind
	DenseDimension  int
	Ignore          *feed.IgnoreSpec
}

// Table is the static, config-derived mapping from declared output streams to
// contracts and stream descriptions. Input and output stream lists are
// index-parallel with the sequences emitted by a producer.
type Table struct {
	contracts     []Contract
	inputStreams  []feed.StreamDescription
	outputStreams []feed.StreamDescription
	maxDimension  int
}

// Derive builds a contract Table from stream declarations, validating every
// declaration against the dataset's blob names and the shapes of one sample
// example. All violations are terminal; they are aggregated so that a broken
// configuration surfaces every problem at once.
func Derive(decls []feed.StreamDeclaration, blobNames []string, sample *example.Buffer) (*Table, error) {
	if len(decls) == 0 {
		return nil, errors.EmptyStreamListError{}
	}
	t := &Table{
		contracts: make([]Contract, 0, len(decls)),
	}
	var derivationErrors *multierror.Error
	for _, decl := range decls {
		if !containsName(blobNames, decl.DatasetBlobName) {
			derivationErrors = multierror.Append(derivationErrors, errors.UnknownBlobError{Name: decl.DatasetBlobName})
			continue
		}
		// shape provided by the dataset has its fastest-varying axis last,
		// stream layouts place it first
		nativeShape, err := sample.BlobShape(decl.DatasetBlobName)
		if err != nil {
			derivationErrors = multierror.Append(derivationErrors, err)
			continue
		}
		shape := nativeShape.Reversed()
		if decl.Storage == feed.SparseStorage {
			// sparse blobs hold one class index per spatial position
			if shape[2] != 1 {
				derivationErrors = multierror.Append(derivationErrors, errors.SparseShapeError{Name: decl.Name, Channels: shape[2]})
				continue
			}
			if decl.DenseDimension <= 0 {
				derivationErrors = multierror.Append(derivationErrors, errors.InvalidDimensionError{Name: decl.Name, Dimension: decl.DenseDimension})
				continue
			}
			// the final layout of a sparse sample is dense over the declared
			// channel dimension
			layout := feed.Shape{shape[0], shape[1], decl.DenseDimension}
			t.appendStreams(decl.Name, feed.SparseStorage, layout)
			if decl.DenseDimension > t.maxDimension {
				t.maxDimension = decl.DenseDimension
			}
			if decl.Ignore != nil {
				// the ignore companion is always dense and single-channel,
				// matching the spatial shape of the sparse stream
				t.appendStreams(decl.Ignore.StreamName, feed.DenseStorage, feed.Shape{shape[0], shape[1], 1})
			}
		} else {
			if decl.Ignore != nil {
				derivationErrors = multierror.Append(derivationErrors, errors.IgnoreOnDenseError{Name: decl.Name})
				continue
			}
			t.appendStreams(decl.Name, feed.DenseStorage, shape)
		}
		ignore := decl.Ignore
		if ignore != nil {
			spec := *ignore
			ignore = &spec
		}
		t.contracts = append(t.contracts, Contract{
			OutputName:      decl.Name,
			DatasetBlobName: decl.DatasetBlobName,
			Storage:         decl.Storage,
			DenseDimension:  decl.DenseDimension,
			Ignore:          ignore,
		})
	}
	if err := derivationErrors.ErrorOrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

// appendStreams records one input stream and its structurally identical
// output stream. Output storage is always dense.
func (t *Table) appendStreams(name string, storage feed.StorageKind, layout feed.Shape) {
	t.inputStreams = append(t.inputStreams, feed.StreamDescription{
		ID:           len(t.inputStreams),
		Name:         name,
		Storage:      storage,
		SampleLayout: layout,
	})
	t.outputStreams = append(t.outputStreams, feed.StreamDescription{
		ID:           len(t.outputStreams),
		Name:         name,
		Storage:      feed.DenseStorage,
		SampleLayout: layout,
	})
}

// Contracts returns the derived contracts, in declaration order
func (t *Table) Contracts() []Contract {
	return t.contracts
}

// InputStreams returns the derived input stream descriptions
func (t *Table) InputStreams() []feed.StreamDescription {
	return t.inputStreams
}

// OutputStreams returns the derived output stream descriptions
func (t *Table) OutputStreams() []feed.StreamDescription {
	return t.outputStreams
}

// MaxDimension returns the largest dense channel dimension declared by any
// sparse stream
func (t *Table) MaxDimension() int {
	return t.maxDimension
}

// containsName returns true iff names contains name
func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
