package feed

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about a running
// Feed producer
type RuntimeStatistics interface {
	// GetStartTime returns the time at which the producer was created
	GetStartTime() time.Time
	// GetRuntime returns the running time of the producer
	GetRuntime() time.Duration
	// GetNumEpochsStarted returns the number of epochs started so far
	GetNumEpochsStarted() int64
	// GetNumExamplesFetched returns the number of examples pulled from the
	// example source so far
	GetNumExamplesFetched() int64
	// GetNumMinibatchesServed returns the number of minibatch requests
	// served so far
	GetNumMinibatchesServed() int64
	// GetCurrentFetchTime returns a rolling average of recent example fetch
	// times
	GetCurrentFetchTime() time.Duration
}
