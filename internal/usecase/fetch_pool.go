package usecase

import (
	"context"
	"errors"
	"sync"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/metrics"
)

// FetchTask is one upstream fetch the pool must execute: a route, the
// envelope date window, and the individual dates to write back.
type FetchTask struct {
	Route     entity.RoutePair
	StartDate string
	EndDate   string
	Dates     []string
	Cabin     string
	Carriers  []string
	Seats     int
}

// RateLimitState carries the worst rate-limit signal observed across one
// batch. Remaining is the minimum rate-limit-remaining seen, Reset the
// maximum reset; -1 means the upstream never exposed the header.
type RateLimitState struct {
	Remaining int
	Reset     int
}

// FetchPool executes upstream availability requests under a concurrency
// ceiling. Small batches run with low concurrency to avoid tripping upstream
// throttling; larger ones scale up to the configured maximum. A throttled or
// failed route is marked with an error flag and empty payload instead of
// aborting its siblings, and successful payloads are persisted to cache
// before pool building sees them.
type FetchPool struct {
	source         repository.AvailabilitySource
	orchestrator   *CacheOrchestrator
	maxConcurrency int
	logger         logger.Logger
	metrics        *metrics.Metrics
}

// NewFetchPool creates a new bounded fetch pool
func NewFetchPool(
	source repository.AvailabilitySource,
	orchestrator *CacheOrchestrator,
	maxConcurrency int,
	logger logger.Logger,
	m *metrics.Metrics,
) *FetchPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 5
	}
	return &FetchPool{
		source:         source,
		orchestrator:   orchestrator,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		metrics:        m,
	}
}

// concurrencyFor sizes the worker count to the batch.
func (p *FetchPool) concurrencyFor(tasks int) int {
	c := (tasks + 2) / 3
	if c < 1 {
		c = 1
	}
	if c > p.maxConcurrency {
		c = p.maxConcurrency
	}
	return c
}

// FetchAll runs the batch and returns one result per task plus the minimum
// rate-limit signal observed. The returned slice preserves task order.
func (p *FetchPool) FetchAll(ctx context.Context, tasks []FetchTask) ([]entity.RouteFetchResult, RateLimitState) {
	results := make([]entity.RouteFetchResult, len(tasks))
	state := RateLimitState{Remaining: -1, Reset: -1}
	if len(tasks) == 0 {
		return results, state
	}

	var (
		wg      sync.WaitGroup
		stateMu sync.Mutex
	)
	sem := make(chan struct{}, p.concurrencyFor(len(tasks)))

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task FetchTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, payload := p.fetchOne(ctx, task)
			results[i] = result
			if payload == nil {
				return
			}

			stateMu.Lock()
			if payload.RateLimitRemaining >= 0 && (state.Remaining < 0 || payload.RateLimitRemaining < state.Remaining) {
				state.Remaining = payload.RateLimitRemaining
			}
			if payload.RateLimitReset > state.Reset {
				state.Reset = payload.RateLimitReset
			}
			stateMu.Unlock()
		}(i, task)
	}
	wg.Wait()

	if p.metrics != nil && state.Remaining >= 0 {
		p.metrics.RateLimitRemaining.Set(float64(state.Remaining))
	}
	return results, state
}

func (p *FetchPool) fetchOne(ctx context.Context, task FetchTask) (entity.RouteFetchResult, *entity.FetchPayload) {
	result := entity.RouteFetchResult{
		Origin:      task.Route.Origin,
		Destination: task.Route.Destination,
	}

	if p.metrics != nil {
		p.metrics.UpstreamFetches.Inc()
	}

	payload, err := p.source.Fetch(ctx, entity.FetchRequest{
		Origin:      task.Route.Origin,
		Destination: task.Route.Destination,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Cabin:       task.Cabin,
		Carriers:    task.Carriers,
		Seats:       task.Seats,
	})
	if err != nil {
		result.Error = true
		reason := "unavailable"
		if errors.Is(err, entity.ErrRateLimited) {
			reason = "rate_limited"
		}
		if p.metrics != nil {
			p.metrics.UpstreamErrors.WithLabelValues(reason).Inc()
		}
		p.logger.Warn("Upstream fetch failed", "route", task.Route.Key(), "reason", reason, "error", err)
		return result, nil
	}

	if p.orchestrator != nil {
		p.orchestrator.Persist(ctx, task.Route, payload, task.Dates)
	}

	result.Groups = payload.Groups
	result.Pricing = payload.Pricing
	return result, payload
}
