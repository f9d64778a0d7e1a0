package producer

import (
	"log"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/contract"
	"github.com/go-feed/feed/epoch"
	"github.com/go-feed/feed/errors"
	"github.com/go-feed/feed/example"
	istats "github.com/go-feed/feed/internal/stats"
	uuid "github.com/gofrs/uuid"
)

// Producer converts examples pulled from an ExampleSource into batched
// sequences matching a derived contract table. It implements
// feed.SequenceEnumerator. A Producer is single-threaded and pull-based;
// it is not safe for concurrent use.
type Producer struct {
	id     string
	opts   *Options
	source feed.ExampleSource
	table  *contract.Table
	buffer *example.Buffer
	plan   *epoch.Plan
	stats  *istats.FeedStatistics
}

// CreateProducer is a factory for Producers. It reads blob names from the
// source, primes the example buffer with one fetch to discover blob shapes,
// and derives the stream contract table.
func CreateProducer(source feed.ExampleSource, opts *Options) (*Producer, error) {
	if err := ensureDefaultOptionsValues(opts); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Producer: %v", err)
	}
	blobNames := make([]string, source.BlobCount())
	for i := range blobNames {
		blobNames[i] = source.BlobName(i)
	}
	buffer, err := example.CreateBuffer(blobNames)
	if err != nil {
		return nil, err
	}
	stats := &istats.FeedStatistics{}
	stats.Start()
	// take one example to be used for tensor shape retrieval
	stats.StartFetch()
	if err := source.FetchNext(buffer); err != nil {
		return nil, err
	}
	stats.EndFetch()
	table, err := contract.Derive(opts.Streams, blobNames, buffer)
	if err != nil {
		return nil, err
	}
	plan, err := epoch.NewPlan(opts.WorkerRank, opts.WorkerCount, opts.FullTraversalPerWorker)
	if err != nil {
		return nil, err
	}
	return &Producer{
		id:     id.String(),
		opts:   opts,
		source: source,
		table:  table,
		buffer: buffer,
		plan:   plan,
		stats:  stats,
	}, nil
}

// ID returns the ID of this Producer
func (p *Producer) ID() string {
	return p.id
}

// StreamDescriptions returns the stable list of input stream metadata, which
// is what the packer consumes
func (p *Producer) StreamDescriptions() []feed.StreamDescription {
	return p.table.InputStreams()
}

// OutputStreamDescriptions returns the stable list of output stream metadata
func (p *Producer) OutputStreamDescriptions() []feed.StreamDescription {
	return p.table.OutputStreams()
}

// GetStatistics returns statistics about this Producer
func (p *Producer) GetStatistics() feed.RuntimeStatistics {
	return p.stats
}

// StartEpoch computes this worker's share of a fresh epoch
func (p *Producer) StartEpoch(conf feed.EpochConfiguration) error {
	if err := p.plan.Start(conf, p.source.ExampleCount()); err != nil {
		return err
	}
	p.stats.StartEpoch()
	return nil
}

// SetConfiguration checks that nothing changed since StartEpoch was called
func (p *Producer) SetConfiguration(conf feed.ReaderConfiguration) error {
	return p.plan.CheckConfiguration(conf)
}

// GetNextSequences serves one minibatch request, returning one sequence list
// per input stream and an end-of-epoch flag
func (p *Producer) GetNextSequences(totalSampleCount int) (*feed.Sequences, error) {
	sampleCount, endOfEpoch, err := p.plan.NextSampleCount(totalSampleCount)
	if err != nil {
		return nil, err
	}
	inputStreams := p.table.InputStreams()
	sequences := &feed.Sequences{
		Data:       make([][]feed.SequenceData, len(inputStreams)),
		EndOfEpoch: endOfEpoch,
	}
	// for each stream we provide one sequence per sample
	for istr := range sequences.Data {
		sequences.Data[istr] = make([]feed.SequenceData, sampleCount)
	}
	// fill in the sequence data one sample at a time
	for ismpl := 0; ismpl < sampleCount; ismpl++ {
		istr := 0
		for _, con := range p.table.Contracts() {
			var numFilled int
			if con.Storage == feed.DenseStorage {
				numFilled, err = p.fillDense(sequences, &con, istr, ismpl)
			} else {
				numFilled, err = p.fillSparse(sequences, &con, istr, ismpl)
			}
			if err != nil {
				return nil, err
			}
			istr += numFilled
		}
		// pull the next example
		p.stats.StartFetch()
		if err := p.source.FetchNext(p.buffer); err != nil {
			return nil, err
		}
		p.stats.EndFetch()
	}
	p.plan.Consume(sampleCount)
	p.stats.EndMinibatch()
	return sequences, nil
}

// fillDense packages one sample of a dense stream, transferring blob memory
// out of the example buffer rather than copying it. Returns the number of
// streams filled.
func (p *Producer) fillDense(sequences *feed.Sequences, con *contract.Contract, istr int, ismpl int) (int, error) {
	if con.Ignore != nil {
		return 0, errors.IgnoreOnDenseError{Name: con.OutputName}
	}
	// dense blobs may vary in shape per example, so the layout comes from
	// the current example rather than the contract table
	nativeShape, err := p.buffer.BlobShape(con.DatasetBlobName)
	if err != nil {
		return 0, err
	}
	data, err := p.buffer.TakeBlob(con.DatasetBlobName)
	if err != nil {
		return 0, err
	}
	// although the recorded layout reverses the dataset shape, the memory
	// layout is unchanged; only the shape notation differs
	sequences.Data[istr][ismpl] = &feed.DenseSequenceData{
		ID:     ismpl,
		Layout: nativeShape.Reversed(),
		Data:   data,
	}
	return 1, nil
}

// fillSparse packages one sample of a sparse stream, interpreting the blob as
// a per-spatial-position class-index map and expanding it to one-hot
// index/value pairs, together with its companion ignore stream when declared.
// Returns the number of streams filled.
func (p *Producer) fillSparse(sequences *feed.Sequences, con *contract.Contract, istr int, ismpl int) (int, error) {
	inputStreams := p.table.InputStreams()
	var ignoreData []float32
	if con.Ignore != nil {
		if istr+1 >= len(inputStreams) {
			return 0, errors.MissingIgnoreStreamError{Name: con.OutputName}
		}
		// ignore values default to 1; positions to be excluded are zeroed
		// below
		ignoreLayout := inputStreams[istr+1].SampleLayout
		ignoreData = make([]float32, ignoreLayout.Size())
		for i := range ignoreData {
			ignoreData[i] = 1
		}
		sequences.Data[istr+1][ismpl] = &feed.DenseSequenceData{
			ID:     ismpl,
			Layout: ignoreLayout,
			Data:   ignoreData,
		}
	}
	layout := inputStreams[istr].SampleLayout
	data, err := p.buffer.TakeBlob(con.DatasetBlobName)
	if err != nil {
		return 0, err
	}
	spatialSize := layout[0] * layout[1]
	if len(data) != spatialSize {
		return 0, errors.SparseSizeError{Got: len(data), Want: spatialSize}
	}
	// the channel dimension equals the number of outputs; we need one
	// distribution per class
	outChannels := layout[2]
	indices := make([]int32, len(data))
	values := make([]float32, len(data))
	for inz, v := range data {
		values[inz] = 1
		class := int(v)
		if ignoreData != nil && class == con.Ignore.Label {
			ignoreData[inz] = 0
			// in spite of ignoring this target the packer needs some valid
			// index; the position itself (channel 0) is fine
			indices[inz] = int32(inz)
			continue
		}
		if class < 0 || class > outChannels-1 {
			return 0, errors.ClassOutOfRangeError{Class: class, Channels: outChannels}
		}
		indices[inz] = int32(class*spatialSize + inz)
	}
	sequences.Data[istr][ismpl] = &feed.SparseSequenceData{
		ID:       ismpl,
		Layout:   layout,
		Indices:  indices,
		Values:   values,
		NnzCount: len(data),
	}
	if con.Ignore != nil {
		return 2, nil
	}
	return 1, nil
}
