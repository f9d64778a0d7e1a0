package config

import (
	"fmt"
	"io/ioutil"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/datasource/file"
	"github.com/go-feed/feed/producer"
	"github.com/tidwall/gjson"
)

// Config is the parsed configuration surface of a feeder: producer options
// plus the location of the dataset it reads
type Config struct {
	Producer      producer.Options
	DatasetDir    string
	IDsFiles      []string
	PrefetchDepth int
}

// Load reads and parses a feeder configuration file
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a JSON feeder configuration. workerRank defaults to 0 and
// workerCount to 1 when absent, so a single-process setup needs no worker
// section. The ids-file list is pipe-delimited.
func Parse(data []byte) (*Config, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("Malformed feeder configuration")
	}
	root := gjson.ParseBytes(data)
	conf := &Config{
		Producer: producer.Options{
			WorkerRank:             int(root.Get("workerRank").Int()),
			WorkerCount:            1,
			FullTraversalPerWorker: root.Get("fullEpochTraversal").Bool(),
		},
		DatasetDir:    root.Get("datasetDir").String(),
		PrefetchDepth: int(root.Get("prefetchDepth").Int()),
	}
	if workerCount := root.Get("workerCount"); workerCount.Exists() {
		conf.Producer.WorkerCount = int(workerCount.Int())
	}
	if idsFiles := root.Get("idsFiles"); idsFiles.Exists() {
		conf.IDsFiles = file.SplitIDsFiles(idsFiles.String())
	}
	streams := root.Get("streams").Array()
	for _, stream := range streams {
		decl, err := parseStream(stream)
		if err != nil {
			return nil, err
		}
		conf.Producer.Streams = append(conf.Producer.Streams, decl)
	}
	return conf, nil
}

// parseStream parses one stream declaration
func parseStream(stream gjson.Result) (feed.StreamDeclaration, error) {
	decl := feed.StreamDeclaration{
		Name:            stream.Get("name").String(),
		DatasetBlobName: stream.Get("blob").String(),
		DenseDimension:  int(stream.Get("dimension").Int()),
	}
	if len(decl.Name) == 0 {
		return decl, fmt.Errorf("Stream declaration is missing a name")
	}
	if len(decl.DatasetBlobName) == 0 {
		return decl, fmt.Errorf("Stream %s is missing a dataset blob name", decl.Name)
	}
	switch storage := stream.Get("storage").String(); storage {
	case "dense", "":
		decl.Storage = feed.DenseStorage
	case "sparse":
		decl.Storage = feed.SparseStorage
	default:
		return decl, fmt.Errorf("Stream %s declares unknown storage kind %s", decl.Name, storage)
	}
	if ignore := stream.Get("ignore"); ignore.Exists() {
		decl.Ignore = &feed.IgnoreSpec{
			StreamName: ignore.Get("stream").String(),
			Label:      int(ignore.Get("label").Int()),
		}
		if len(decl.Ignore.StreamName) == 0 {
			return decl, fmt.Errorf("Stream %s declares an ignore spec without a stream name", decl.Name)
		}
	}
	return decl, nil
}

// CreateFileProducer constructs a file-backed Producer from a parsed
// configuration. The returned close function stops the dataset source.
func CreateFileProducer(conf *Config) (*producer.Producer, func() error, error) {
	source, err := file.CreateSource(&file.SourceConf{
		Dir:           conf.DatasetDir,
		IDsFiles:      conf.IDsFiles,
		PrefetchDepth: conf.PrefetchDepth,
	})
	if err != nil {
		return nil, nil, err
	}
	p, err := producer.CreateProducer(source, &conf.Producer)
	if err != nil {
		source.Close()
		return nil, nil, err
	}
	return p, source.Close, nil
}
