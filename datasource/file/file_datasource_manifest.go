package file

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// manifestFileName is the name of the dataset description file within a
// dataset directory
const manifestFileName = "manifest.json"

// IDsFileSeparator separates entries in a pipe-delimited ids-file list, as
// accepted by configuration surfaces
const IDsFileSeparator = "|"

// manifestExample is one example's entry in the dataset manifest
type manifestExample struct {
	id        string
	paths     map[string]string // blob name -> blob file path, relative to the dataset dir
	checksums map[string]uint64 // blob name -> xxhash64 of the uncompressed payload
}

// parseManifest reads and validates a dataset manifest, returning the
// dataset's blob names and example entries in manifest order
func parseManifest(dir string) ([]string, []manifestExample, error) {
	path := filepath.Join(dir, manifestFileName)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("Malformed dataset manifest %s", path)
	}
	manifest := gjson.ParseBytes(data)
	var blobNames []string
	for _, name := range manifest.Get("blobs").Array() {
		blobNames = append(blobNames, name.String())
	}
	if len(blobNames) == 0 {
		return nil, nil, fmt.Errorf("Dataset manifest %s declares no blobs", path)
	}
	var examples []manifestExample
	for _, entry := range manifest.Get("examples").Array() {
		ex := manifestExample{
			id:        entry.Get("id").String(),
			paths:     make(map[string]string, len(blobNames)),
			checksums: make(map[string]uint64, len(blobNames)),
		}
		if len(ex.id) == 0 {
			return nil, nil, fmt.Errorf("Dataset manifest %s contains an example without an id", path)
		}
		for _, name := range blobNames {
			blobPath := entry.Get("files").Get(name).String()
			if len(blobPath) == 0 {
				return nil, nil, fmt.Errorf("Example %s is missing a file for blob %s", ex.id, name)
			}
			ex.paths[name] = blobPath
			checksum, err := strconv.ParseUint(entry.Get("checksums").Get(name).String(), 16, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("Example %s carries a malformed checksum for blob %s: %v", ex.id, name, err)
			}
			ex.checksums[name] = checksum
		}
		examples = append(examples, ex)
	}
	return blobNames, examples, nil
}

// restrictToIDs filters and reorders examples according to ids files, each
// holding one example id per line. The resulting order is the concatenation
// of the ids files.
func restrictToIDs(examples []manifestExample, idsFiles []string) ([]manifestExample, error) {
	byID := make(map[string]*manifestExample, len(examples))
	for i := range examples {
		byID[examples[i].id] = &examples[i]
	}
	var restricted []manifestExample
	for _, idsFile := range idsFiles {
		data, err := ioutil.ReadFile(idsFile)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(data), "\n") {
			id := strings.TrimSpace(line)
			if len(id) == 0 {
				continue
			}
			ex, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("Ids file %s references unknown example %s", idsFile, id)
			}
			restricted = append(restricted, *ex)
		}
	}
	return restricted, nil
}

// SplitIDsFiles parses a pipe-delimited ids-file list into individual paths
func SplitIDsFiles(list string) []string {
	var idsFiles []string
	for _, entry := range strings.Split(list, IDsFileSeparator) {
		if len(entry) > 0 {
			idsFiles = append(idsFiles, entry)
		}
	}
	return idsFiles
}
