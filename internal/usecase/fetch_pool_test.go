package usecase

import (
	"context"
	"testing"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchTask(origin, dest string, dates ...string) FetchTask {
	return FetchTask{
		Route:     entity.RoutePair{Origin: origin, Destination: dest},
		StartDate: dates[0],
		EndDate:   dates[len(dates)-1],
		Dates:     dates,
	}
}

func TestFetchAllPartialFailure(t *testing.T) {
	source := newFakeSource()
	source.payloads["JFK-LHR"] = &entity.FetchPayload{
		Groups: []entity.AvailabilityGroup{
			testGroup("JFK", "LHR", "2025-06-01", "OW",
				testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)),
		},
		RateLimitRemaining: 40, RateLimitReset: 10,
	}
	source.payloads["JFK-AMS"] = &entity.FetchPayload{RateLimitRemaining: 38, RateLimitReset: 12}
	source.errs["JFK-CDG"] = &entity.RateLimitError{RetryAfter: 30 * time.Second}

	pool := NewFetchPool(source, nil, 5, logger.NewNop(), nil)
	results, state := pool.FetchAll(context.Background(), []FetchTask{
		fetchTask("JFK", "LHR", "2025-06-01"),
		fetchTask("JFK", "CDG", "2025-06-01"),
		fetchTask("JFK", "AMS", "2025-06-01"),
	})

	require.Len(t, results, 3)
	assert.False(t, results[0].Error)
	assert.Len(t, results[0].Groups, 1)
	assert.True(t, results[1].Error, "throttled route is flagged, not fatal")
	assert.Empty(t, results[1].Groups)
	assert.False(t, results[2].Error)

	assert.Equal(t, 38, state.Remaining, "minimum remaining across the batch")
	assert.Equal(t, 12, state.Reset, "maximum reset across the batch")
}

func TestFetchAllPersistsSuccesses(t *testing.T) {
	cache := newMemCache()
	orchestrator := NewCacheOrchestrator(cache, nil, 0, logger.NewNop(), nil)

	source := newFakeSource()
	source.payloads["JFK-LHR"] = &entity.FetchPayload{
		Groups: []entity.AvailabilityGroup{
			testGroup("JFK", "LHR", "2025-06-01", "OW",
				testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)),
		},
		RateLimitRemaining: -1, RateLimitReset: -1,
	}
	source.errs["JFK-CDG"] = &entity.RateLimitError{RetryAfter: time.Second}

	pool := NewFetchPool(source, orchestrator, 5, logger.NewNop(), nil)
	pool.FetchAll(context.Background(), []FetchTask{
		fetchTask("JFK", "LHR", "2025-06-01"),
		fetchTask("JFK", "CDG", "2025-06-01"),
	})

	_, found, err := cache.GetGroups(context.Background(), "JFK", "LHR", "2025-06-01")
	require.NoError(t, err)
	assert.True(t, found, "successful fetch is written back")

	_, found, err = cache.GetGroups(context.Background(), "JFK", "CDG", "2025-06-01")
	require.NoError(t, err)
	assert.False(t, found, "failed fetch must not be cached as empty")
}

func TestConcurrencyScalesWithBatch(t *testing.T) {
	pool := NewFetchPool(newFakeSource(), nil, 5, logger.NewNop(), nil)

	assert.Equal(t, 1, pool.concurrencyFor(1))
	assert.Equal(t, 1, pool.concurrencyFor(3))
	assert.Equal(t, 2, pool.concurrencyFor(6))
	assert.Equal(t, 4, pool.concurrencyFor(12))
	assert.Equal(t, 5, pool.concurrencyFor(40), "ceiling caps large batches")
}

func TestFetchAllRespectsCeiling(t *testing.T) {
	source := newFakeSource()
	pool := NewFetchPool(source, nil, 2, logger.NewNop(), nil)

	tasks := make([]FetchTask, 12)
	for i := range tasks {
		tasks[i] = fetchTask("JFK", "LHR", "2025-06-01")
	}
	pool.FetchAll(context.Background(), tasks)

	assert.Equal(t, 12, source.calls)
	assert.LessOrEqual(t, source.maxSeen, 2, "in-flight requests never exceed the ceiling")
}
