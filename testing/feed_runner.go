package testing

import (
	"github.com/go-feed/feed"
	"github.com/go-feed/feed/datasource/memory"
	"github.com/go-feed/feed/producer"
)

// DatasetConf describes a synthetic in-memory dataset for tests
type DatasetConf struct {
	BlobNames    []string
	ExampleCount int
	// FillBlob produces the dataset-native shape and values of one blob of
	// one example
	FillBlob func(exampleIndex int, blobIndex int) (feed.Shape, []float32)
}

// CreateMemoryProducer constructs a Producer over a synthetic in-memory
// dataset, for use in tests. The given options are cloned, so defaulting
// inside the producer factory does not leak back to the caller.
func CreateMemoryProducer(conf *DatasetConf, opts *producer.Options) (*producer.Producer, error) {
	source, err := CreateMemorySource(conf)
	if err != nil {
		return nil, err
	}
	return producer.CreateProducer(source, producer.CloneOptions(opts))
}

// CreateMemorySource constructs the in-memory ExampleSource backing
// CreateMemoryProducer
func CreateMemorySource(conf *DatasetConf) (*memory.Source, error) {
	shapes := make([][]feed.Shape, conf.ExampleCount)
	examples := make([][][]float32, conf.ExampleCount)
	for ie := 0; ie < conf.ExampleCount; ie++ {
		shapes[ie] = make([]feed.Shape, len(conf.BlobNames))
		examples[ie] = make([][]float32, len(conf.BlobNames))
		for ib := range conf.BlobNames {
			shape, data := conf.FillBlob(ie, ib)
			shapes[ie][ib] = shape
			examples[ie][ib] = data
		}
	}
	return memory.CreateSource(conf.BlobNames, shapes, examples)
}
