package errors

import (
	"fmt"
)

// UnknownBlobError occurs when a name does not match any blob in the dataset
type UnknownBlobError struct{ Name string }

// Error returns a textual representation of this UnknownBlobError
func (e UnknownBlobError) Error() string {
	return fmt.Sprintf("Blob with name %s not found in dataset", e.Name)
}

// EmptyBlobListError occurs when an ExampleBuffer is created without blob names
type EmptyBlobListError struct{}

// Error returns a textual representation of this EmptyBlobListError
func (e EmptyBlobListError) Error() string {
	return "Empty blob names list provided"
}

// EmptyStreamListError occurs when a producer is created without stream declarations
type EmptyStreamListError struct{}

// Error returns a textual representation of this EmptyStreamListError
func (e EmptyStreamListError) Error() string {
	return "Empty stream declaration list provided"
}

// TakenBlobError occurs when a blob slot is read after its memory was transferred out
type TakenBlobError struct{ Name string }

// Error returns a textual representation of this TakenBlobError
func (e TakenBlobError) Error() string {
	return fmt.Sprintf("Blob %s has been taken and not refilled", e.Name)
}

// SparseShapeError occurs when a sparse stream references a blob whose last axis is not 1
type SparseShapeError struct {
	Name     string
	Channels int
}

// Error returns a textual representation of this SparseShapeError
func (e SparseShapeError) Error() string {
	return fmt.Sprintf("Invalid dataset shape for sparse stream %s: expected single-channel blob, got %d channels", e.Name, e.Channels)
}

// IgnoreOnDenseError occurs when a dense stream declares an ignore companion
type IgnoreOnDenseError struct{ Name string }

// Error returns a textual representation of this IgnoreOnDenseError
func (e IgnoreOnDenseError) Error() string {
	return fmt.Sprintf("Dense stream %s cannot declare an ignore label", e.Name)
}

// InvalidDimensionError occurs when a sparse stream declares a non-positive dense dimension
type InvalidDimensionError struct {
	Name      string
	Dimension int
}

// Error returns a textual representation of this InvalidDimensionError
func (e InvalidDimensionError) Error() string {
	return fmt.Sprintf("Sparse stream %s declares invalid dense dimension %d", e.Name, e.Dimension)
}

// EpochNotConsumedError occurs when a new epoch is started before the previous one was fully consumed
type EpochNotConsumedError struct {
	EpochSize int
	Consumed  int
}

// Error returns a textual representation of this EpochNotConsumedError
func (e EpochNotConsumedError) Error() string {
	return fmt.Sprintf("New epoch started without reading all samples from previous epoch (%d != %d)", e.EpochSize, e.Consumed)
}

// WorkerIdentityError occurs when worker rank, worker count or minibatch size drift between calls
type WorkerIdentityError struct {
	Field    string
	Expected int
	Actual   int
}

// Error returns a textual representation of this WorkerIdentityError
func (e WorkerIdentityError) Error() string {
	return fmt.Sprintf("%s changed in feeder: %d != %d", e.Field, e.Actual, e.Expected)
}

// NonDivisibleMinibatchError occurs when the minibatch size is not divisible by the worker count
type NonDivisibleMinibatchError struct {
	MinibatchSize int
	WorkerCount   int
}

// Error returns a textual representation of this NonDivisibleMinibatchError
func (e NonDivisibleMinibatchError) Error() string {
	return fmt.Sprintf("Minibatch size (%d) not divisible by number of workers (%d)", e.MinibatchSize, e.WorkerCount)
}

// MinibatchSizeMismatchError occurs when a request does not match the configured minibatch size
type MinibatchSizeMismatchError struct {
	Configured int
	Requested  int
}

// Error returns a textual representation of this MinibatchSizeMismatchError
func (e MinibatchSizeMismatchError) Error() string {
	return fmt.Sprintf("Mismatch between minibatch size (%d) and demanded sample count (%d)", e.Configured, e.Requested)
}

// ZeroSampleCountError occurs when there are more workers than samples in a minibatch
type ZeroSampleCountError struct {
	MinibatchSize int
	WorkerCount   int
}

// Error returns a textual representation of this ZeroSampleCountError
func (e ZeroSampleCountError) Error() string {
	return fmt.Sprintf("Greater number of workers (%d) than samples in minibatch (%d)", e.WorkerCount, e.MinibatchSize)
}

// RemainderMismatchError occurs when the next-to-last minibatch would absorb more than one extra sample
type RemainderMismatchError struct {
	Remaining int
	PerWorker int
}

// Error returns a textual representation of this RemainderMismatchError
func (e RemainderMismatchError) Error() string {
	return fmt.Sprintf("Appending more than one sample (remaining=%d) to the next-to-last minibatch (per-worker size=%d)", e.Remaining, e.PerWorker)
}

// ClassOutOfRangeError occurs when a sparse class index falls outside the declared channel count
type ClassOutOfRangeError struct {
	Class    int
	Channels int
}

// Error returns a textual representation of this ClassOutOfRangeError
func (e ClassOutOfRangeError) Error() string {
	return fmt.Sprintf("Invalid channel value %d in sparse input stream (channel count %d)", e.Class, e.Channels)
}

// MissingIgnoreStreamError occurs when a sparse stream is not followed by its declared ignore stream
type MissingIgnoreStreamError struct{ Name string }

// Error returns a textual representation of this MissingIgnoreStreamError
func (e MissingIgnoreStreamError) Error() string {
	return fmt.Sprintf("Invalid number of input streams (sparse stream %s is not followed by its ignore stream)", e.Name)
}

// SparseSizeError occurs when a sparse blob does not contain exactly one class index per spatial position
type SparseSizeError struct {
	Got  int
	Want int
}

// Error returns a textual representation of this SparseSizeError
func (e SparseSizeError) Error() string {
	return fmt.Sprintf("Unexpected sparse data count %d, expected %d", e.Got, e.Want)
}

// ChecksumMismatchError occurs when a blob file's contents do not match its recorded checksum
type ChecksumMismatchError struct {
	Path     string
	Expected uint64
	Actual   uint64
}

// Error returns a textual representation of this ChecksumMismatchError
func (e ChecksumMismatchError) Error() string {
	return fmt.Sprintf("Checksum mismatch for blob file %s: %016x != %016x", e.Path, e.Actual, e.Expected)
}
