package producer

import (
	"fmt"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
)

// Options configure a Producer. Worker identity is immutable once the
// Producer is created; any later mismatch is a configuration error.
type Options struct {
	WorkerRank             int                      // 0-indexed rank of this worker
	WorkerCount            int                      // [REQUIRED] the total number of cooperating workers
	FullTraversalPerWorker bool                     // iff true, every worker independently traverses the entire dataset when an epoch requests the full dataset
	Streams                []feed.StreamDeclaration // [REQUIRED] the declared output streams
}

// ensureDefaultOptionsValues validates required options and defaults the rest
func ensureDefaultOptionsValues(opts *Options) error {
	if opts.WorkerCount == 0 {
		opts.WorkerCount = 1
	}
	if opts.WorkerCount < 0 {
		return fmt.Errorf("Options.WorkerCount must be greater than 0")
	}
	if opts.WorkerRank < 0 || opts.WorkerRank >= opts.WorkerCount {
		return fmt.Errorf("Options.WorkerRank %d out of range for %d workers", opts.WorkerRank, opts.WorkerCount)
	}
	if len(opts.Streams) == 0 {
		return errors.EmptyStreamListError{}
	}
	return nil
}

// CloneOptions makes a copy of an Options
func CloneOptions(opts *Options) *Options {
	streams := make([]feed.StreamDeclaration, len(opts.Streams))
	copy(streams, opts.Streams)
	return &Options{
		WorkerRank:             opts.WorkerRank,
		WorkerCount:            opts.WorkerCount,
		FullTraversalPerWorker: opts.FullTraversalPerWorker,
		Streams:                streams,
	}
}
