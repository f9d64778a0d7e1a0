package epoch

import (
	"fmt"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
)

// Plan computes and tracks one worker's share of a training epoch. Worker
// rank and count are fixed at construction; each call to Start resizes the
// plan for a fresh epoch. A Plan is not safe for concurrent use.
type Plan struct {
	workerRank             int
	workerCount            int
	fullTraversalPerWorker bool

	minibatchSize       int
	epochSize           int
	consumed            int
	appendLastMinibatch bool
	started             bool
}

// NewPlan is a factory for Plans. fullTraversalPerWorker opts into every
// worker independently traversing the entire dataset, which keeps
// dataset-wide metrics correct at the cost of duplicated work.
func NewPlan(workerRank int, workerCount int, fullTraversalPerWorker bool) (*Plan, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("Number of workers must be greater than 0, got %d", workerCount)
	}
	if workerRank < 0 || workerRank >= workerCount {
		return nil, fmt.Errorf("Worker rank %d out of range for %d workers", workerRank, workerCount)
	}
	return &Plan{
		workerRank:             workerRank,
		workerCount:            workerCount,
		fullTraversalPerWorker: fullTraversalPerWorker,
	}, nil
}

// Start computes this worker's epoch size for a fresh epoch. datasetExamples
// is the total number of examples in the underlying dataset, used when the
// configuration requests the full dataset.
func (p *Plan) Start(conf feed.EpochConfiguration, datasetExamples int) error {
	// the previous epoch must have been fully consumed
	if p.started && p.consumed != p.epochSize {
		return errors.EpochNotConsumedError{EpochSize: p.epochSize, Consumed: p.consumed}
	}
	// worker identity is immutable after construction
	if conf.WorkerRank != p.workerRank {
		return errors.WorkerIdentityError{Field: "Worker rank", Expected: p.workerRank, Actual: conf.WorkerRank}
	}
	if conf.WorkerCount != p.workerCount {
		return errors.WorkerIdentityError{Field: "Number of workers", Expected: p.workerCount, Actual: conf.WorkerCount}
	}
	if conf.MinibatchSize <= 0 {
		return fmt.Errorf("Minibatch size must be greater than 0, got %d", conf.MinibatchSize)
	}
	if conf.MinibatchSize%p.workerCount != 0 {
		return errors.NonDivisibleMinibatchError{MinibatchSize: conf.MinibatchSize, WorkerCount: p.workerCount}
	}
	p.minibatchSize = conf.MinibatchSize

	totalEpochSamples := conf.TotalEpochSamples
	if totalEpochSamples == feed.FullDatasetSize {
		totalEpochSamples = datasetExamples
		if p.fullTraversalPerWorker {
			// every worker walks the whole set independently
			totalEpochSamples = datasetExamples * p.workerCount
		}
	}

	// this worker's share of the full minibatches; each full minibatch
	// splits evenly across workers since minibatchSize % workerCount == 0
	p.appendLastMinibatch = false
	epochSize := ((totalEpochSamples / p.minibatchSize) * p.minibatchSize) / p.workerCount
	rem := totalEpochSamples % p.minibatchSize
	if rem != 0 {
		// samples not forming a full minibatch are distributed evenly
		remPerWorker := rem / p.workerCount
		allWorkersActiveInLastMinibatch := remPerWorker != 0
		epochSize += remPerWorker
		if rem%p.workerCount != 0 {
			// fewer leftover samples than workers; the lowest ranks each
			// take one
			if p.workerRank < rem%p.workerCount {
				epochSize++
				if !allWorkersActiveInLastMinibatch {
					// too few samples for a standalone final minibatch, so
					// the next-to-last minibatch absorbs them
					p.appendLastMinibatch = true
				}
			}
		}
	}
	p.epochSize = epochSize
	p.consumed = 0
	p.started = true
	return nil
}

// CheckConfiguration verifies that nothing changed since Start was called
func (p *Plan) CheckConfiguration(conf feed.ReaderConfiguration) error {
	if conf.WorkerCount != p.workerCount {
		return errors.WorkerIdentityError{Field: "Number of workers", Expected: p.workerCount, Actual: conf.WorkerCount}
	}
	if conf.WorkerRank != p.workerRank {
		return errors.WorkerIdentityError{Field: "Worker rank", Expected: p.workerRank, Actual: conf.WorkerRank}
	}
	if conf.MinibatchSize != p.minibatchSize {
		return errors.WorkerIdentityError{Field: "Minibatch size", Expected: p.minibatchSize, Actual: conf.MinibatchSize}
	}
	return nil
}

// NextSampleCount resolves how many samples this worker must produce for one
// minibatch request, applying the end-of-epoch adjustment. It does not record
// consumption; callers invoke Consume once the samples have been produced.
func (p *Plan) NextSampleCount(totalSampleCount int) (sampleCount int, endOfEpoch bool, err error) {
	// only full-size requests matching the configured minibatch are served
	if totalSampleCount != p.minibatchSize {
		return 0, false, errors.MinibatchSizeMismatchError{Configured: p.minibatchSize, Requested: totalSampleCount}
	}
	sampleCount = totalSampleCount / p.workerCount
	if sampleCount == 0 {
		return 0, false, errors.ZeroSampleCountError{MinibatchSize: totalSampleCount, WorkerCount: p.workerCount}
	}
	remaining := p.epochSize - p.consumed
	if p.appendLastMinibatch && remaining <= 2*sampleCount {
		// this must be the next-to-last minibatch, absorbing exactly one
		// extra sample
		if remaining != sampleCount+1 {
			return 0, false, errors.RemainderMismatchError{Remaining: remaining, PerWorker: sampleCount}
		}
		sampleCount = remaining
		endOfEpoch = true
	} else if !p.appendLastMinibatch && remaining <= sampleCount {
		// final, possibly undersized minibatch
		sampleCount = remaining
		endOfEpoch = true
	}
	return sampleCount, endOfEpoch, nil
}

// Consume records the production of n samples against this epoch
func (p *Plan) Consume(n int) {
	p.consumed += n
}

// EpochSize returns the number of samples this worker must produce for the
// current epoch
func (p *Plan) EpochSize() int {
	return p.epochSize
}

// Consumed returns the number of samples produced so far this epoch
func (p *Plan) Consumed() int {
	return p.consumed
}

// MinibatchSize returns the minibatch size recorded by Start
func (p *Plan) MinibatchSize() int {
	return p.minibatchSize
}

// AppendLastMinibatch returns true iff this worker's next-to-last minibatch
// must absorb the epoch's leftover samples
func (p *Plan) AppendLastMinibatch() bool {
	return p.appendLastMinibatch
}

// Exhausted returns true iff the current epoch has been fully consumed
func (p *Plan) Exhausted() bool {
	return p.consumed == p.epochSize
}

// WorkerRank returns the rank fixed at construction
func (p *Plan) WorkerRank() int {
	return p.workerRank
}

// WorkerCount returns the worker count fixed at construction
func (p *Plan) WorkerCount() int {
	return p.workerCount
}
