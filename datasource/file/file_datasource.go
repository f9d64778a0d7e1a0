package file

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
	"github.com/go-feed/feed/logging"
	lz4 "github.com/pierrec/lz4"
	"golang.org/x/sync/semaphore"
)

// SourceConf configures a file Source
type SourceConf struct {
	Dir           string   // [REQUIRED] the dataset directory, containing manifest.json
	IDsFiles      []string // optional list of files restricting and ordering the example ids served
	PrefetchDepth int      // The maximum number of decoded examples held ahead of the consumer. Defaults to 4.
}

// Source is an ExampleSource backed by a dataset directory. The directory
// holds a manifest.json describing blob names and examples, and one
// lz4-compressed blob file per example blob. Decoding runs ahead of the
// consumer on an internal goroutine, bounded by PrefetchDepth; FetchNext
// remains a blocking call which preserves manifest order.
type Source struct {
	conf      *SourceConf
	blobNames []string
	examples  []manifestExample

	prefetched chan *decodedExample
	inFlight   *semaphore.Weighted
	cancel     context.CancelFunc
	done       chan struct{}
}

// decodedExample is one example's blobs, decoded off the consumer's thread
type decodedExample struct {
	shapes []feed.Shape
	blobs  [][]float32
	err    error
}

// CreateSource is a factory for file Sources. It parses the dataset manifest,
// applies any ids-file restriction, and starts the prefetcher.
func CreateSource(conf *SourceConf) (*Source, error) {
	if len(conf.Dir) == 0 {
		return nil, fmt.Errorf("SourceConf.Dir must be the path of a dataset directory")
	}
	if conf.PrefetchDepth == 0 {
		conf.PrefetchDepth = 4
	}
	blobNames, examples, err := parseManifest(conf.Dir)
	if err != nil {
		return nil, err
	}
	if len(conf.IDsFiles) > 0 {
		examples, err = restrictToIDs(examples, conf.IDsFiles)
		if err != nil {
			return nil, err
		}
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("Dataset %s contains no examples", conf.Dir)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Source{
		conf:       conf,
		blobNames:  blobNames,
		examples:   examples,
		prefetched: make(chan *decodedExample, conf.PrefetchDepth),
		inFlight:   semaphore.NewWeighted(int64(conf.PrefetchDepth)),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go s.prefetch(ctx)
	return s, nil
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

// FetchNext overwrites the given buffer with the next example, blocking until
// the prefetcher has decoded it
func (s *Source) FetchNext(buffer feed.ExampleBuffer) error {
	decoded, ok := <-s.prefetched
	if !ok {
		return fmt.Errorf("Source has been closed")
	}
	s.inFlight.Release(1)
	if decoded.err != nil {
		return decoded.err
	}
	for ib := range s.blobNames {
		shape := decoded.shapes[ib]
		buffer.ReshapeBlob(ib, shape[0], shape[1], shape[2])
		copy(buffer.BlobMemory(ib), decoded.blobs[ib])
	}
	return nil
}

// Close stops the prefetcher and releases its goroutine. The Source cannot be
// used afterwards.
func (s *Source) Close() error {
	s.cancel()
	<-s.done
	close(s.prefetched)
	return nil
}

// prefetch decodes examples ahead of the consumer, in manifest order,
// wrapping around at the end of the dataset
func (s *Source) prefetch(ctx context.Context) {
	defer close(s.done)
	cursor := 0
	for {
		if err := s.inFlight.Acquire(ctx, 1); err != nil {
			return
		}
		decoded := s.decodeExample(&s.examples[cursor])
		select {
		case s.prefetched <- decoded:
		case <-ctx.Done():
			return
		}
		cursor = (cursor + 1) % len(s.examples)
	}
}

// decodeExample reads and decompresses every blob file of one example
func (s *Source) decodeExample(entry *manifestExample) *decodedExample {
	decoded := &decodedExample{
		shapes: make([]feed.Shape, len(s.blobNames)),
		blobs:  make([][]float32, len(s.blobNames)),
	}
	for ib, name := range s.blobNames {
		shape, data, err := s.decodeBlobFile(entry.paths[name], entry.checksums[name])
		if err != nil {
			logging.Logf(logging.ErrorLevel, "failed to decode blob %s of example %s: %v", name, entry.id, err)
			decoded.err = err
			return decoded
		}
		decoded.shapes[ib] = shape
		decoded.blobs[ib] = data
	}
	return decoded
}

// decodeBlobFile decompresses one blob file and verifies its payload
// checksum. The uncompressed payload is a three-uint32 dataset-native shape
// header followed by little-endian float32 values.
func (s *Source) decodeBlobFile(relPath string, checksum uint64) (feed.Shape, []float32, error) {
	path := filepath.Join(s.conf.Dir, relPath)
	f, err := os.Open(path)
	if err != nil {
		return feed.Shape{}, nil, err
	}
	defer f.Close()
	payload, err := ioutil.ReadAll(lz4.NewReader(f))
	if err != nil {
		return feed.Shape{}, nil, fmt.Errorf("Unable to decompress blob file %s: %v", path, err)
	}
	if actual := xxhash.Sum64(payload); actual != checksum {
		return feed.Shape{}, nil, errors.ChecksumMismatchError{Path: relPath, Expected: checksum, Actual: actual}
	}
	r := bytes.NewReader(payload)
	var dims [feed.BlobDims]uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return feed.Shape{}, nil, fmt.Errorf("Malformed blob file header in %s: %v", path, err)
	}
	shape := feed.Shape{int(dims[0]), int(dims[1]), int(dims[2])}
	data := make([]float32, shape.Size())
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return feed.Shape{}, nil, fmt.Errorf("Truncated blob file %s: %v", path, err)
	}
	return shape, data, nil
}
