package usecase

import (
	"context"
	"sync"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/metrics"
)

// DefaultCacheTTL is the write-back TTL for availability and pricing records.
const DefaultCacheTTL = 1800 * time.Second

// RoutePlan is the orchestrator's verdict for one route: the cached records
// already satisfied, and the minimal date window still missing. A route with
// NeedsFetch false requires no network work at all.
type RoutePlan struct {
	Route        entity.RoutePair
	NeedsFetch   bool
	MissingStart string
	MissingEnd   string
	Cached       entity.RouteFetchResult
}

// CacheOrchestrator decides, per route, the minimal date sub-range that must
// be fetched from upstream. A cache entry is either absent (must fetch) or
// present as a possibly-empty list (authoritative "no inventory", satisfied);
// store failures degrade to "missing" so composition is never aborted by the
// cache layer.
type CacheOrchestrator struct {
	availCache     repository.AvailabilityCacheRepository
	pricingCache   repository.PricingCacheRepository
	cacheTTL       time.Duration
	pricingEnabled bool
	logger         logger.Logger
	metrics        *metrics.Metrics
}

// NewCacheOrchestrator creates a new cache orchestrator. pricingCache may be
// nil when pricing caching is disabled; metrics may be nil in tests.
func NewCacheOrchestrator(
	availCache repository.AvailabilityCacheRepository,
	pricingCache repository.PricingCacheRepository,
	cacheTTL time.Duration,
	logger logger.Logger,
	m *metrics.Metrics,
) *CacheOrchestrator {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &CacheOrchestrator{
		availCache:     availCache,
		pricingCache:   pricingCache,
		cacheTTL:       cacheTTL,
		pricingEnabled: pricingCache != nil,
		logger:         logger,
		metrics:        m,
	}
}

type dateProbe struct {
	found   bool
	groups  []entity.AvailabilityGroup
	pricing []entity.PricingEntry
}

// Plan probes the cache for every (route, date) pair and returns one plan
// per route. Probes for one route's dates run concurrently; their results
// merge independent of completion order.
func (o *CacheOrchestrator) Plan(ctx context.Context, routes []entity.RoutePair, dates []string) []RoutePlan {
	plans := make([]RoutePlan, 0, len(routes))
	for _, route := range routes {
		plans = append(plans, o.planRoute(ctx, route, dates))
	}
	return plans
}

func (o *CacheOrchestrator) planRoute(ctx context.Context, route entity.RoutePair, dates []string) RoutePlan {
	probes := make([]dateProbe, len(dates))

	var wg sync.WaitGroup
	for i, date := range dates {
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()
			probes[i] = o.probeDate(ctx, route, date)
		}(i, date)
	}
	wg.Wait()

	plan := RoutePlan{
		Route: route,
		Cached: entity.RouteFetchResult{
			Origin:      route.Origin,
			Destination: route.Destination,
		},
	}
	for i, date := range dates {
		if !probes[i].found {
			if !plan.NeedsFetch {
				plan.NeedsFetch = true
				plan.MissingStart = date
			}
			plan.MissingEnd = date
			continue
		}
		plan.Cached.Groups = append(plan.Cached.Groups, probes[i].groups...)
		plan.Cached.Pricing = append(plan.Cached.Pricing, probes[i].pricing...)
	}
	return plan
}

func (o *CacheOrchestrator) probeDate(ctx context.Context, route entity.RoutePair, date string) dateProbe {
	groups, found, err := o.availCache.GetGroups(ctx, route.Origin, route.Destination, date)
	if err != nil {
		// Store failure behaves like a miss: fail open toward correctness
		// at the cost of an extra upstream call.
		o.logger.Warn("Cache probe failed, treating as missing", "route", route.Key(), "date", date, "error", err)
		o.countMiss()
		return dateProbe{}
	}
	if !found {
		o.countMiss()
		return dateProbe{}
	}
	o.countHit()

	probe := dateProbe{found: true, groups: groups}
	if o.pricingEnabled {
		pricing, ok, err := o.pricingCache.GetPricing(ctx, route.Origin, route.Destination, date)
		if err != nil {
			o.logger.Warn("Pricing cache probe failed", "route", route.Key(), "date", date, "error", err)
		} else if ok {
			probe.pricing = pricing
		}
	}
	return probe
}

// Envelope combines the per-route missing windows into the smallest
// contiguous span covering all of them, so the upstream batch can be issued
// over one date range. ok is false when no route needs fetching.
func Envelope(plans []RoutePlan) (start, end string, ok bool) {
	for _, plan := range plans {
		if !plan.NeedsFetch {
			continue
		}
		if !ok {
			start, end, ok = plan.MissingStart, plan.MissingEnd, true
			continue
		}
		if plan.MissingStart < start {
			start = plan.MissingStart
		}
		if plan.MissingEnd > end {
			end = plan.MissingEnd
		}
	}
	return start, end, ok
}

// Persist re-splits a fetched payload per date and writes it back, one
// (route, date) key at a time. Dates with no groups are written as empty
// records: upstream answered, so the emptiness is authoritative. Write
// failures are logged and swallowed; the fresh data is still used in-process.
func (o *CacheOrchestrator) Persist(ctx context.Context, route entity.RoutePair, payload *entity.FetchPayload, dates []string) {
	groupsByDate := make(map[string][]entity.AvailabilityGroup)
	for _, group := range payload.Groups {
		groupsByDate[group.Date] = append(groupsByDate[group.Date], group)
	}
	pricingByDate := make(map[string][]entity.PricingEntry)
	for _, entry := range payload.Pricing {
		pricingByDate[entry.Date] = append(pricingByDate[entry.Date], entry)
	}

	for _, date := range dates {
		if err := o.availCache.SetGroups(ctx, route.Origin, route.Destination, date, groupsByDate[date], o.cacheTTL); err != nil {
			o.logger.Warn("Cache write failed", "route", route.Key(), "date", date, "error", err)
		}
		if o.pricingEnabled {
			if err := o.pricingCache.SetPricing(ctx, route.Origin, route.Destination, date, pricingByDate[date], o.cacheTTL); err != nil {
				o.logger.Warn("Pricing cache write failed", "route", route.Key(), "date", date, "error", err)
			}
		}
	}
}

func (o *CacheOrchestrator) countHit() {
	if o.metrics != nil {
		o.metrics.CacheHits.Inc()
	}
}

func (o *CacheOrchestrator) countMiss() {
	if o.metrics != nil {
		o.metrics.CacheMisses.Inc()
	}
}
