package stats

import (
	"time"
)

const statisticRollingWindows = 5

// FeedStatistics contains statistics about a running producer
type FeedStatistics struct {
	started              bool
	startTime            time.Time
	epochsStarted        int64
	examplesFetched      int64
	minibatchesServed    int64
	recentFetchTimes     []int64 // for rolling average of recent example fetch times
	recentFetchTimesHead int

	// temp vars
	currentFetchStartTime time.Time
}

// Start triggers statistics tracking, if it hasn't been started already
func (fs *FeedStatistics) Start() {
	if !fs.started {
		fs.started = true
		fs.startTime = time.Now()
		fs.recentFetchTimes = make([]int64, statisticRollingWindows)
	}
}

// StartEpoch tracks the beginning of a new epoch
func (fs *FeedStatistics) StartEpoch() {
	fs.epochsStarted++
}

// StartFetch tracks the beginning of an example fetch
func (fs *FeedStatistics) StartFetch() {
	fs.currentFetchStartTime = time.Now()
}

// EndFetch tracks the end of an example fetch
func (fs *FeedStatistics) EndFetch() {
	fs.recentFetchTimes[fs.recentFetchTimesHead] = time.Since(fs.currentFetchStartTime).Nanoseconds()
	fs.recentFetchTimesHead = (fs.recentFetchTimesHead + 1) % len(fs.recentFetchTimes)
	fs.examplesFetched++
}

// EndMinibatch tracks the completion of a minibatch request
func (fs *FeedStatistics) EndMinibatch() {
	fs.minibatchesServed++
}

// GetStartTime returns the time at which the producer was created
func (fs *FeedStatistics) GetStartTime() time.Time {
	return fs.startTime
}

// GetRuntime returns the running time of the producer
func (fs *FeedStatistics) GetRuntime() time.Duration {
	return time.Since(fs.startTime)
}

// GetNumEpochsStarted returns the number of epochs started so far
func (fs *FeedStatistics) GetNumEpochsStarted() int64 {
	return fs.epochsStarted
}

// GetNumExamplesFetched returns the number of examples pulled from the example source so far
func (fs *FeedStatistics) GetNumExamplesFetched() int64 {
	return fs.examplesFetched
}

// GetNumMinibatchesServed returns the number of minibatch requests served so far
func (fs *FeedStatistics) GetNumMinibatchesServed() int64 {
	return fs.minibatchesServed
}

// GetCurrentFetchTime returns a rolling average of recent example fetch times
func (fs *FeedStatistics) GetCurrentFetchTime() time.Duration {
	var total int64
	for _, d := range fs.recentFetchTimes {
		total += d
	}
	return time.Duration(total / statisticRollingWindows)
}
