package file

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-feed/feed"
	lz4 "github.com/pierrec/lz4"
)

// WritableExample is one example to be written into a dataset directory
type WritableExample struct {
	ID     string
	Shapes []feed.Shape // dataset-native shapes, one per blob
	Blobs  [][]float32  // values, one slice per blob
}

// WriteDataset materializes a dataset directory readable by a file Source:
// one lz4-compressed blob file per example blob, plus a manifest.json
// recording blob names, file paths and payload checksums. Useful for
// exporting datasets and for tests.
func WriteDataset(dir string, blobNames []string, examples []WritableExample) error {
	if err := os.MkdirAll(filepath.Join(dir, "blobs"), 0755); err != nil {
		return err
	}
	var manifest bytes.Buffer
	manifest.WriteString("{\n  \"blobs\": [")
	for i, name := range blobNames {
		if i > 0 {
			manifest.WriteString(", ")
		}
		fmt.Fprintf(&manifest, "%q", name)
	}
	manifest.WriteString("],\n  \"examples\": [")
	for ie, ex := range examples {
		if len(ex.Blobs) != len(blobNames) || len(ex.Shapes) != len(blobNames) {
			return fmt.Errorf("Example %s does not supply %d blobs", ex.ID, len(blobNames))
		}
		if ie > 0 {
			manifest.WriteString(",")
		}
		fmt.Fprintf(&manifest, "\n    {\"id\": %q, \"files\": {", ex.ID)
		var checksums bytes.Buffer
		for ib, name := range blobNames {
			relPath := filepath.Join("blobs", fmt.Sprintf("%s.%s.lz4", ex.ID, name))
			checksum, err := writeBlobFile(filepath.Join(dir, relPath), ex.Shapes[ib], ex.Blobs[ib])
			if err != nil {
				return err
			}
			if ib > 0 {
				manifest.WriteString(", ")
				checksums.WriteString(", ")
			}
			fmt.Fprintf(&manifest, "%q: %q", name, relPath)
			fmt.Fprintf(&checksums, "%q: %q", name, fmt.Sprintf("%016x", checksum))
		}
		fmt.Fprintf(&manifest, "}, \"checksums\": {%s}}", checksums.String())
	}
	manifest.WriteString("\n  ]\n}\n")
	return ioutil.WriteFile(filepath.Join(dir, manifestFileName), manifest.Bytes(), 0644)
}

// writeBlobFile writes one lz4-compressed blob file and returns the xxhash64
// of its uncompressed payload
func writeBlobFile(path string, shape feed.Shape, data []float32) (uint64, error) {
	if len(data) != shape.Size() {
		return 0, fmt.Errorf("Blob file %s holds %d values, shape %s requires %d", path, len(data), shape, shape.Size())
	}
	var payload bytes.Buffer
	dims := [feed.BlobDims]uint32{uint32(shape[0]), uint32(shape[1]), uint32(shape[2])}
	if err := binary.Write(&payload, binary.LittleEndian, dims); err != nil {
		return 0, err
	}
	if err := binary.Write(&payload, binary.LittleEndian, data); err != nil {
		return 0, err
	}
	checksum := xxhash.Sum64(payload.Bytes())
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	compressor := lz4.NewWriter(f)
	if _, err := compressor.Write(payload.Bytes()); err != nil {
		return 0, err
	}
	if err := compressor.Close(); err != nil {
		return 0, err
	}
	return checksum, nil
}
