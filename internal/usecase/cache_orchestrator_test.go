package usecase

import (
	"context"
	"testing"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jfkLhr() entity.RoutePair {
	return entity.RoutePair{Origin: "JFK", Destination: "LHR"}
}

func TestPlanDistinguishesAbsentFromEmpty(t *testing.T) {
	cache := newMemCache()
	orchestrator := NewCacheOrchestrator(cache, nil, 0, logger.NewNop(), nil)

	// 06-01 cached with inventory, 06-02 cached as authoritative empty,
	// 06-03 never set.
	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-01", []entity.AvailabilityGroup{
		testGroup("JFK", "LHR", "2025-06-01", "OW",
			testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)),
	}, DefaultCacheTTL)
	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-02", []entity.AvailabilityGroup{}, DefaultCacheTTL)

	plans := orchestrator.Plan(context.Background(), []entity.RoutePair{jfkLhr()},
		[]string{"2025-06-01", "2025-06-02", "2025-06-03"})
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.True(t, plan.NeedsFetch)
	assert.Equal(t, "2025-06-03", plan.MissingStart, "present-as-empty must not count as missing")
	assert.Equal(t, "2025-06-03", plan.MissingEnd)
	assert.Len(t, plan.Cached.Groups, 1)
}

func TestPlanFullySatisfied(t *testing.T) {
	cache := newMemCache()
	orchestrator := NewCacheOrchestrator(cache, nil, 0, logger.NewNop(), nil)

	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-01", []entity.AvailabilityGroup{}, DefaultCacheTTL)
	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-02", []entity.AvailabilityGroup{}, DefaultCacheTTL)

	plans := orchestrator.Plan(context.Background(), []entity.RoutePair{jfkLhr()},
		[]string{"2025-06-01", "2025-06-02"})
	assert.False(t, plans[0].NeedsFetch, "fully cached route needs no network fetch")
}

func TestPlanMinimalWindowSpansGaps(t *testing.T) {
	cache := newMemCache()
	orchestrator := NewCacheOrchestrator(cache, nil, 0, logger.NewNop(), nil)

	// Only the middle date is cached; the minimal window still spans
	// first missing to last missing.
	cache.SetGroups(context.Background(), "JFK", "LHR", "2025-06-02", []entity.AvailabilityGroup{}, DefaultCacheTTL)

	plans := orchestrator.Plan(context.Background(), []entity.RoutePair{jfkLhr()},
		[]string{"2025-06-01", "2025-06-02", "2025-06-03"})
	plan := plans[0]
	assert.True(t, plan.NeedsFetch)
	assert.Equal(t, "2025-06-01", plan.MissingStart)
	assert.Equal(t, "2025-06-03", plan.MissingEnd)
}

func TestPlanCacheFailureDegradesToFetch(t *testing.T) {
	cache := newMemCache()
	cache.failGets = true
	orchestrator := NewCacheOrchestrator(cache, nil, 0, logger.NewNop(), nil)

	plans := orchestrator.Plan(context.Background(), []entity.RoutePair{jfkLhr()},
		[]string{"2025-06-01"})
	assert.True(t, plans[0].NeedsFetch, "store failure must degrade to always-fetch")
}

func TestEnvelopeCombinesRouteWindows(t *testing.T) {
	plans := []RoutePlan{
		{NeedsFetch: true, MissingStart: "2025-06-03", MissingEnd: "2025-06-05"},
		{NeedsFetch: false},
		{NeedsFetch: true, MissingStart: "2025-06-01", MissingEnd: "2025-06-02"},
	}

	start, end, ok := Envelope(plans)
	require.True(t, ok)
	assert.Equal(t, "2025-06-01", start)
	assert.Equal(t, "2025-06-05", end)
}

func TestEnvelopeNothingMissing(t *testing.T) {
	_, _, ok := Envelope([]RoutePlan{{NeedsFetch: false}, {NeedsFetch: false}})
	assert.False(t, ok)
}

func TestPersistSplitsByDateAndWritesEmpties(t *testing.T) {
	cache := newMemCache()
	orchestrator := NewCacheOrchestrator(cache, cache, 0, logger.NewNop(), nil)

	payload := &entity.FetchPayload{
		Groups: []entity.AvailabilityGroup{
			testGroup("JFK", "LHR", "2025-06-01", "OW",
				testFlight("BA112", "JFK", "LHR", "2025-06-01T18:30:00", "2025-06-02T06:25:00", 415, 3451, true)),
		},
		Pricing: []entity.PricingEntry{pricingEntry("BA112", "2025-06-01", "JFK", "LHR")},
	}
	orchestrator.Persist(context.Background(), jfkLhr(), payload, []string{"2025-06-01", "2025-06-02"})

	groups, found, err := cache.GetGroups(context.Background(), "JFK", "LHR", "2025-06-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, groups, 1)

	// The fetched window covered 06-02 and upstream returned nothing for
	// it: that emptiness is authoritative and must be cached as such.
	groups, found, err = cache.GetGroups(context.Background(), "JFK", "LHR", "2025-06-02")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, groups)

	pricing, found, err := cache.GetPricing(context.Background(), "JFK", "LHR", "2025-06-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, pricing, 1)
}
