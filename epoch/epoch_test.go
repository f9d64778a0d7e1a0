package epoch

import (
	"testing"

	"github.com/go-feed/feed"
	"github.com/go-feed/feed/errors"
	"github.com/stretchr/testify/require"
)

func startPlan(t *testing.T, rank int, workers int, minibatch int, total int) *Plan {
	plan, err := NewPlan(rank, workers, false)
	require.Nil(t, err)
	err = plan.Start(feed.EpochConfiguration{
		WorkerRank:        rank,
		WorkerCount:       workers,
		MinibatchSize:     minibatch,
		TotalEpochSamples: total,
	}, 0)
	require.Nil(t, err)
	return plan
}

func TestPlanDistributionSums(t *testing.T) {
	// the per-worker epoch sizes must always sum to the epoch total
	for workers := 1; workers <= 6; workers++ {
		for factor := 1; factor <= 5; factor++ {
			minibatch := workers * factor
			for total := 0; total <= 60; total++ {
				sum := 0
				for rank := 0; rank < workers; rank++ {
					plan := startPlan(t, rank, workers, minibatch, total)
					sum += plan.EpochSize()
				}
				require.Equal(t, total, sum, "W=%d M=%d E=%d", workers, minibatch, total)
			}
		}
	}
}

func TestPlanMinibatchShapes(t *testing.T) {
	// across any epoch, at most one minibatch per worker is undersized, and
	// when appending is active the next-to-last minibatch absorbs the
	// remainder instead of an undersized final minibatch occurring
	for workers := 1; workers <= 4; workers++ {
		for factor := 1; factor <= 4; factor++ {
			minibatch := workers * factor
			for total := 1; total <= 40; total++ {
				for rank := 0; rank < workers; rank++ {
					plan := startPlan(t, rank, workers, minibatch, total)
					perWorker := minibatch / workers
					undersized := 0
					oversized := 0
					for !plan.Exhausted() {
						count, endOfEpoch, err := plan.NextSampleCount(minibatch)
						require.Nil(t, err)
						if count < perWorker {
							undersized++
						}
						if count > perWorker {
							oversized++
							require.Equal(t, perWorker+1, count)
						}
						plan.Consume(count)
						require.Equal(t, plan.Exhausted(), endOfEpoch)
					}
					require.True(t, undersized <= 1)
					if plan.AppendLastMinibatch() {
						require.Equal(t, 0, undersized)
						require.Equal(t, 1, oversized)
					} else {
						require.Equal(t, 0, oversized)
					}
				}
			}
		}
	}
}

func TestPlanRaggedEpochScenario(t *testing.T) {
	// E=10, M=4, W=2: each worker owns 5 samples, served as 2+2+1
	for rank := 0; rank < 2; rank++ {
		plan := startPlan(t, rank, 2, 4, 10)
		require.Equal(t, 5, plan.EpochSize())
		require.False(t, plan.AppendLastMinibatch())

		count, endOfEpoch, err := plan.NextSampleCount(4)
		require.Nil(t, err)
		require.Equal(t, 2, count)
		require.False(t, endOfEpoch)
		plan.Consume(count)

		count, endOfEpoch, err = plan.NextSampleCount(4)
		require.Nil(t, err)
		require.Equal(t, 2, count)
		require.False(t, endOfEpoch)
		plan.Consume(count)

		count, endOfEpoch, err = plan.NextSampleCount(4)
		require.Nil(t, err)
		require.Equal(t, 1, count)
		require.True(t, endOfEpoch)
		plan.Consume(count)
		require.True(t, plan.Exhausted())
	}
}

func TestPlanAppendLastMinibatch(t *testing.T) {
	// E=9, M=4, W=2: rank 0 takes the leftover sample and must absorb it
	// into its next-to-last minibatch
	plan := startPlan(t, 0, 2, 4, 9)
	require.Equal(t, 5, plan.EpochSize())
	require.True(t, plan.AppendLastMinibatch())

	count, endOfEpoch, err := plan.NextSampleCount(4)
	require.Nil(t, err)
	require.Equal(t, 2, count)
	require.False(t, endOfEpoch)
	plan.Consume(count)

	count, endOfEpoch, err = plan.NextSampleCount(4)
	require.Nil(t, err)
	require.Equal(t, 3, count)
	require.True(t, endOfEpoch)
	plan.Consume(count)
	require.True(t, plan.Exhausted())

	other := startPlan(t, 1, 2, 4, 9)
	require.Equal(t, 4, other.EpochSize())
	require.False(t, other.AppendLastMinibatch())
}

func TestPlanMalformedAppendRemainder(t *testing.T) {
	plan := startPlan(t, 0, 2, 4, 9)
	require.True(t, plan.AppendLastMinibatch())
	// drift the consumption so the appending remainder cannot be exactly one
	// extra sample
	plan.Consume(3)
	_, _, err := plan.NextSampleCount(4)
	require.IsType(t, errors.RemainderMismatchError{}, err)
}

func TestPlanFullDataset(t *testing.T) {
	plan, err := NewPlan(0, 2, false)
	require.Nil(t, err)
	err = plan.Start(feed.EpochConfiguration{WorkerCount: 2, MinibatchSize: 2, TotalEpochSamples: feed.FullDatasetSize}, 7)
	require.Nil(t, err)
	require.Equal(t, 4, plan.EpochSize()) // 7 splits 4/3 across two workers
}

func TestPlanFullTraversalPerWorker(t *testing.T) {
	// every worker walks the entire dataset independently
	plan, err := NewPlan(1, 2, true)
	require.Nil(t, err)
	err = plan.Start(feed.EpochConfiguration{WorkerRank: 1, WorkerCount: 2, MinibatchSize: 2, TotalEpochSamples: feed.FullDatasetSize}, 7)
	require.Nil(t, err)
	require.Equal(t, 7, plan.EpochSize())
}

func TestPlanRejectsUnconsumedEpoch(t *testing.T) {
	plan := startPlan(t, 0, 2, 4, 10)
	plan.Consume(2)
	err := plan.Start(feed.EpochConfiguration{WorkerCount: 2, MinibatchSize: 4, TotalEpochSamples: 10}, 0)
	require.IsType(t, errors.EpochNotConsumedError{}, err)
}

func TestPlanRejectsWorkerDrift(t *testing.T) {
	plan, err := NewPlan(0, 2, false)
	require.Nil(t, err)
	err = plan.Start(feed.EpochConfiguration{WorkerRank: 1, WorkerCount: 2, MinibatchSize: 4, TotalEpochSamples: 8}, 0)
	require.IsType(t, errors.WorkerIdentityError{}, err)
	err = plan.Start(feed.EpochConfiguration{WorkerRank: 0, WorkerCount: 4, MinibatchSize: 4, TotalEpochSamples: 8}, 0)
	require.IsType(t, errors.WorkerIdentityError{}, err)
}

func TestPlanRejectsNonDivisibleMinibatch(t *testing.T) {
	plan, err := NewPlan(0, 2, false)
	require.Nil(t, err)
	err = plan.Start(feed.EpochConfiguration{WorkerCount: 2, MinibatchSize: 5, TotalEpochSamples: 10}, 0)
	require.IsType(t, errors.NonDivisibleMinibatchError{}, err)
}

func TestPlanCheckConfiguration(t *testing.T) {
	plan := startPlan(t, 0, 2, 4, 10)
	require.Nil(t, plan.CheckConfiguration(feed.ReaderConfiguration{WorkerRank: 0, WorkerCount: 2, MinibatchSize: 4}))
	err := plan.CheckConfiguration(feed.ReaderConfiguration{WorkerRank: 0, WorkerCount: 2, MinibatchSize: 8})
	require.IsType(t, errors.WorkerIdentityError{}, err)
	err = plan.CheckConfiguration(feed.ReaderConfiguration{WorkerRank: 1, WorkerCount: 2, MinibatchSize: 4})
	require.IsType(t, errors.WorkerIdentityError{}, err)
}

func TestPlanRejectsMismatchedRequest(t *testing.T) {
	plan := startPlan(t, 0, 2, 4, 10)
	_, _, err := plan.NextSampleCount(8)
	require.IsType(t, errors.MinibatchSizeMismatchError{}, err)
}

func TestNewPlanValidatesIdentity(t *testing.T) {
	_, err := NewPlan(0, 0, false)
	require.NotNil(t, err)
	_, err = NewPlan(2, 2, false)
	require.NotNil(t, err)
	_, err = NewPlan(-1, 2, false)
	require.NotNil(t, err)
}
