package usecase

import (
	"context"
	"fmt"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/metrics"
	"build-route-api/pkg/utils"

	"github.com/google/uuid"
)

// DefaultMinConnectionMinutes applies when a search leaves the connection
// floor unset.
const DefaultMinConnectionMinutes = 45

// SearchService is the engine facade the route layer calls: it validates the
// request, plans cache usage, fetches gaps, builds and filters the pools,
// composes itineraries and enriches them with pricing and class percentages.
type SearchService struct {
	orchestrator *CacheOrchestrator
	fetchPool    *FetchPool
	builder      *PoolBuilder
	filter       *ReliabilityFilter
	composer     *Composer
	matcher      *PricingMatcher
	reliability  *ReliabilityCache
	searchLogs   repository.SearchLogRepository
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewSearchService creates a new search service. searchLogs may be nil when
// auditing is disabled; metrics may be nil in tests.
func NewSearchService(
	orchestrator *CacheOrchestrator,
	fetchPool *FetchPool,
	builder *PoolBuilder,
	filter *ReliabilityFilter,
	composer *Composer,
	matcher *PricingMatcher,
	reliability *ReliabilityCache,
	searchLogs repository.SearchLogRepository,
	logger logger.Logger,
	m *metrics.Metrics,
) *SearchService {
	return &SearchService{
		orchestrator: orchestrator,
		fetchPool:    fetchPool,
		builder:      builder,
		filter:       filter,
		composer:     composer,
		matcher:      matcher,
		reliability:  reliability,
		searchLogs:   searchLogs,
		logger:       logger,
		metrics:      m,
	}
}

// Search composes priced itineraries for one request. "No itineraries found"
// is a success with empty maps; errors are reserved for malformed route
// structures and total upstream failure with zero usable routes.
func (s *SearchService) Search(ctx context.Context, params entity.SearchParams) (*entity.SearchResult, error) {
	started := time.Now()

	route := params.Route
	if route == nil {
		route = entity.Direct(params.Origin, params.Destination)
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}

	dates, err := utils.DatesBetween(params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: date window: %v", entity.ErrInvalidRouteStructure, err)
	}

	routes := route.RoutePairs()
	plans := s.orchestrator.Plan(ctx, routes, dates)

	fetched, failedRoutes, err := s.fetchMissing(ctx, plans, params)
	if err != nil {
		return nil, err
	}

	results := make([]entity.RouteFetchResult, 0, len(plans)+len(fetched))
	for _, plan := range plans {
		results = append(results, plan.Cached)
	}
	results = append(results, fetched...)

	segPool, pricePool := s.builder.Build(results, route)
	table := s.reliability.Table(ctx)

	directDistance := params.DirectDistance
	if directDistance <= 0 {
		directDistance = deriveDirectDistance(segPool, route.Origin, route.Destination)
	}

	filtered := s.filter.Filter(segPool, route.Origin, route.Destination,
		params.MinReliabilityPercent, directDistance, table)

	minConnection := time.Duration(params.MinConnectionMinutes) * time.Minute
	if params.MinConnectionMinutes <= 0 {
		minConnection = DefaultMinConnectionMinutes * time.Minute
	}

	itineraries := s.composer.Compose(filtered, route.Segments, minConnection)

	result := s.enrich(itineraries, filtered, pricePool, params.MinReliabilityPercent, table)
	result.FailedRoutes = failedRoutes

	s.observe(ctx, params, routes, fetched, failedRoutes, result, started)
	return result, nil
}

// fetchMissing issues the minimal upstream batch over the envelope window.
// Per-route failures are contained; the error return fires only when every
// route needed a fetch, every fetch failed and nothing was cached.
func (s *SearchService) fetchMissing(ctx context.Context, plans []RoutePlan, params entity.SearchParams) ([]entity.RouteFetchResult, []string, error) {
	envStart, envEnd, needed := Envelope(plans)
	if !needed {
		return nil, nil, nil
	}

	envelopeDates, err := utils.DatesBetween(envStart, envEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: envelope window: %v", entity.ErrInvalidRouteStructure, err)
	}

	var tasks []FetchTask
	for _, plan := range plans {
		if !plan.NeedsFetch {
			continue
		}
		tasks = append(tasks, FetchTask{
			Route:     plan.Route,
			StartDate: envStart,
			EndDate:   envEnd,
			Dates:     envelopeDates,
			Cabin:     params.Cabin,
			Carriers:  params.Carriers,
			Seats:     params.Seats,
		})
	}

	fetched, _ := s.fetchPool.FetchAll(ctx, tasks)

	var failedRoutes []string
	failures := 0
	for _, result := range fetched {
		if result.Error {
			failures++
			failedRoutes = append(failedRoutes, result.RouteKey())
		}
	}

	if failures == len(fetched) && len(fetched) == len(plans) && !anyCached(plans) {
		return nil, nil, fmt.Errorf("%w: all %d routes failed", entity.ErrUpstreamUnavailable, failures)
	}
	return fetched, failedRoutes, nil
}

func anyCached(plans []RoutePlan) bool {
	for _, plan := range plans {
		if len(plan.Cached.Groups) > 0 {
			return true
		}
	}
	return false
}

// enrich attaches pricing ids and class percentages to every candidate and
// assembles the flight and pricing lookup maps.
func (s *SearchService) enrich(
	itineraries map[string][]*entity.ItineraryCandidate,
	pool *SegmentPool,
	pricePool *PricingPool,
	minReliabilityPercent float64,
	table entity.ReliabilityTable,
) *entity.SearchResult {
	flightIndex := make(map[string]*entity.AvailabilityFlight)
	for _, groups := range pool.Buckets() {
		for _, group := range groups {
			for i := range group.Flights {
				flightIndex[group.Flights[i].UUID] = &group.Flights[i]
			}
		}
	}

	result := &entity.SearchResult{
		Itineraries: itineraries,
		Flights:     make(map[string]*entity.AvailabilityFlight),
		Pricing:     make(map[string]*entity.PricingEntry),
	}

	for _, candidates := range itineraries {
		for _, candidate := range candidates {
			flights := make([]*entity.AvailabilityFlight, 0, len(candidate.FlightUUIDs))
			for _, id := range candidate.FlightUUIDs {
				if flight, ok := flightIndex[id]; ok {
					flights = append(flights, flight)
					result.Flights[id] = flight
				}
			}

			candidate.ClassPercentages = CalculateClassPercentages(flights, minReliabilityPercent, table)
			candidate.PricingIDs = s.matcher.Match(flights, pricePool)
			for _, id := range candidate.PricingIDs {
				if entry, ok := pricePool.Entry(id); ok {
					result.Pricing[id] = entry
				}
			}
			if s.metrics != nil {
				s.metrics.ItinerariesBuilt.Inc()
			}
		}
	}
	return result
}

// deriveDirectDistance estimates the trip's endpoint great-circle distance
// from observed availability when the caller did not supply one: a direct
// bucket's flight distance when present, otherwise the longest observed
// segment as a lower bound.
func deriveDirectDistance(pool *SegmentPool, origin, destination string) float64 {
	best := 0.0
	for _, group := range pool.Groups(origin, destination) {
		for _, flight := range group.Flights {
			if flight.Distance > 0 && (best == 0 || flight.Distance < best) {
				best = flight.Distance
			}
		}
	}
	if best > 0 {
		return best
	}
	for _, groups := range pool.Buckets() {
		for _, group := range groups {
			for _, flight := range group.Flights {
				if flight.Distance > best {
					best = flight.Distance
				}
			}
		}
	}
	return best
}

func (s *SearchService) observe(
	ctx context.Context,
	params entity.SearchParams,
	routes []entity.RoutePair,
	fetched []entity.RouteFetchResult,
	failedRoutes []string,
	result *entity.SearchResult,
	started time.Time,
) {
	elapsed := time.Since(started)
	if s.metrics != nil {
		s.metrics.SearchDuration.Observe(elapsed.Seconds())
	}

	itineraryCount := 0
	for _, candidates := range result.Itineraries {
		itineraryCount += len(candidates)
	}
	s.logger.Info("Search complete",
		"origin", params.Origin,
		"destination", params.Destination,
		"routes", len(routes),
		"fetched", len(fetched),
		"failed", len(failedRoutes),
		"itineraries", itineraryCount,
		"elapsedMs", elapsed.Milliseconds())

	if s.searchLogs == nil {
		return
	}
	log := &entity.SearchLog{
		RequestID:      uuid.NewString(),
		Origin:         params.Origin,
		Destination:    params.Destination,
		StartDate:      params.StartDate,
		EndDate:        params.EndDate,
		RouteCount:     len(routes),
		FetchedRoutes:  len(fetched),
		FailedRoutes:   failedRoutes,
		ItineraryCount: itineraryCount,
		DurationMs:     elapsed.Milliseconds(),
	}
	if err := s.searchLogs.Insert(ctx, log); err != nil {
		s.logger.Error("Failed to persist search log", "error", err)
	}
}
