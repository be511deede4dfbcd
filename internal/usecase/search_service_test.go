package usecase

import (
	"context"
	"testing"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(cache *memCache, source *fakeSource) *SearchService {
	log := logger.NewNop()
	orchestrator := NewCacheOrchestrator(cache, cache, 0, log, nil)
	return NewSearchService(
		orchestrator,
		NewFetchPool(source, orchestrator, 5, log, nil),
		NewPoolBuilder(log),
		NewReliabilityFilter(log),
		NewComposer(log),
		NewPricingMatcher(log),
		NewReliabilityCache(nil, 0, log),
		nil,
		log,
		nil,
	)
}

func TestSearchDirectFullCacheHit(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	service := newTestService(cache, source)

	ba112 := testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)
	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-01", []entity.AvailabilityGroup{
		testGroup("JFK", "LHR", "2025-06-01", "OW", ba112),
	}, DefaultCacheTTL)
	cache.SetPricing(context.Background(), "JFK", "LHR", "2025-06-01", nil, DefaultCacheTTL)

	result, err := service.Search(context.Background(), entity.SearchParams{
		Origin:                "JFK",
		Destination:           "LHR",
		StartDate:             "2025-06-01",
		EndDate:               "2025-06-01",
		MinReliabilityPercent: 85,
	})
	require.NoError(t, err)

	assert.Zero(t, source.calls, "full cache hit must issue zero upstream fetches")
	require.Len(t, result.Itineraries["2025-06-01"], 1)

	itinerary := result.Itineraries["2025-06-01"][0]
	assert.Equal(t, "JFK-LHR", itinerary.Route)
	assert.Equal(t, []string{utils.FlightUUID("BA112", "2025-06-01T18:30:00", "2025-06-02T06:25:00")}, itinerary.FlightUUIDs)
	assert.Contains(t, result.Flights, ba112.UUID)
}

func TestSearchInvalidRouteStructureFailsFast(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	service := newTestService(cache, source)

	_, err := service.Search(context.Background(), entity.SearchParams{
		Origin:    "",
		StartDate: "2025-06-01",
		EndDate:   "2025-06-01",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidRouteStructure)
	assert.Zero(t, source.calls, "validation precedes any network or cache work")

	_, err = service.Search(context.Background(), entity.SearchParams{
		Origin:      "JFK",
		Destination: "LHR",
		Route: &entity.RouteStructure{
			Origin:      "JFK",
			Destination: "LHR",
			Segments:    []entity.RouteSegment{{From: []string{"JFK"}}},
		},
		StartDate: "2025-06-01",
		EndDate:   "2025-06-01",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidRouteStructure)
}

func TestSearchPartialUpstreamFailure(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	service := newTestService(cache, source)

	toHEL := testFlight("AY16", "JFK", "HEL", "2025-06-01T17:30:00", "2025-06-02T08:50:00", 440, 4117, true)
	onward := testFlight("AY1331", "HEL", "LHR", "2025-06-02T10:30:00", "2025-06-02T11:30:00", 180, 1140, true)
	source.payloads["JFK-HEL"] = &entity.FetchPayload{
		Groups:             []entity.AvailabilityGroup{testGroup("JFK", "HEL", "2025-06-01", "OW", toHEL)},
		RateLimitRemaining: -1, RateLimitReset: -1,
	}
	source.payloads["HEL-LHR"] = &entity.FetchPayload{
		Groups:             []entity.AvailabilityGroup{testGroup("HEL", "LHR", "2025-06-02", "OW", onward)},
		RateLimitRemaining: -1, RateLimitReset: -1,
	}
	source.errs["JFK-CDG"] = entity.ErrUpstreamUnavailable
	source.errs["CDG-LHR"] = entity.ErrUpstreamUnavailable

	result, err := service.Search(context.Background(), entity.SearchParams{
		Origin:      "JFK",
		Destination: "LHR",
		Route: &entity.RouteStructure{
			Origin:      "JFK",
			Destination: "LHR",
			Segments: []entity.RouteSegment{
				{From: []string{"JFK"}, To: []string{"HEL", "CDG"}},
				{From: []string{"HEL", "CDG"}, To: []string{"LHR"}},
			},
		},
		StartDate:             "2025-06-01",
		EndDate:               "2025-06-01",
		MinReliabilityPercent: 85,
	})
	require.NoError(t, err, "partial upstream failure yields a partial result")

	require.Len(t, result.Itineraries["2025-06-01"], 1)
	assert.Equal(t, "JFK-HEL-LHR", result.Itineraries["2025-06-01"][0].Route)
	assert.Contains(t, result.FailedRoutes, "JFK-CDG")
	assert.Contains(t, result.FailedRoutes, "CDG-LHR")
}

func TestSearchTotalUpstreamFailure(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	source.errs["JFK-LHR"] = entity.ErrUpstreamUnavailable
	service := newTestService(cache, source)

	_, err := service.Search(context.Background(), entity.SearchParams{
		Origin:      "JFK",
		Destination: "LHR",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-01",
	})
	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}

func TestSearchNoInventoryIsSuccess(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	service := newTestService(cache, source)

	params := entity.SearchParams{
		Origin:      "JFK",
		Destination: "LHR",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-02",
	}

	result, err := service.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, 1, source.calls)

	// The empty answer was cached as authoritative: repeating the search
	// must not re-fetch.
	result, err = service.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, 1, source.calls, "present-as-empty cache entries satisfy the window")
}

func TestSearchEnrichesWithPricing(t *testing.T) {
	cache := newMemCache()
	source := newFakeSource()
	service := newTestService(cache, source)

	ba112 := testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)
	entry := entity.PricingEntry{
		FlightNumbers:      "BA112",
		Date:               "2025-06-01",
		OriginAirport:      "JFK",
		DestinationAirport: "LHR",
		DepartsAt:          "2025-06-01T18:32:00",
		ArrivesAt:          "2025-06-02T06:27:00",
		Pricing:            []entity.SourcePricing{{Source: "BA", JMiles: 60000, Taxes: 420.5, Currency: "USD"}},
	}
	source.payloads["JFK-LHR"] = &entity.FetchPayload{
		Groups:             []entity.AvailabilityGroup{testGroup("JFK", "LHR", "2025-06-01", "OW", ba112)},
		Pricing:            []entity.PricingEntry{entry},
		RateLimitRemaining: -1, RateLimitReset: -1,
	}

	result, err := service.Search(context.Background(), entity.SearchParams{
		Origin:                "JFK",
		Destination:           "LHR",
		StartDate:             "2025-06-01",
		EndDate:               "2025-06-01",
		MinReliabilityPercent: 85,
	})
	require.NoError(t, err)

	require.Len(t, result.Itineraries["2025-06-01"], 1)
	itinerary := result.Itineraries["2025-06-01"][0]
	require.Len(t, itinerary.PricingIDs, 1, "timestamps within tolerance must match")
	assert.Contains(t, result.Pricing, itinerary.PricingIDs[0])
	assert.Equal(t, 100.0, itinerary.ClassPercentages[entity.CabinBusiness])
}
