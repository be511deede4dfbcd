package usecase

import (
	"strings"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/utils"
)

// SegmentPool indexes availability groups by "ORIGIN-DESTINATION" route key,
// across every fetched or cached date and alliance. It is rebuilt per request
// and never persisted as-is; only its constituent per-date groups are cached.
type SegmentPool struct {
	buckets map[string][]*entity.AvailabilityGroup
}

// NewSegmentPool creates an empty segment pool
func NewSegmentPool() *SegmentPool {
	return &SegmentPool{
		buckets: make(map[string][]*entity.AvailabilityGroup),
	}
}

// Add merges a group into the pool. Groups with the same
// (origin, destination, date, alliance) fold together, deduplicating flights
// by Flight UUID with max/OR cabin semantics.
func (p *SegmentPool) Add(group entity.AvailabilityGroup) {
	key := group.RouteKey()
	for _, existing := range p.buckets[key] {
		if existing.Date == group.Date && existing.Alliance == group.Alliance {
			for _, flight := range group.Flights {
				existing.AddFlight(flight)
			}
			return
		}
	}
	copied := entity.AvailabilityGroup{
		OriginAirport:      group.OriginAirport,
		DestinationAirport: group.DestinationAirport,
		Date:               group.Date,
		Alliance:           group.Alliance,
	}
	for _, flight := range group.Flights {
		copied.AddFlight(flight)
	}
	p.buckets[key] = append(p.buckets[key], &copied)
}

// Groups returns the groups observed for one airport pair.
func (p *SegmentPool) Groups(origin, destination string) []*entity.AvailabilityGroup {
	return p.buckets[origin+"-"+destination]
}

// Buckets exposes the underlying route-key index.
func (p *SegmentPool) Buckets() map[string][]*entity.AvailabilityGroup {
	return p.buckets
}

// FlightCount returns the total number of flights across all buckets.
func (p *SegmentPool) FlightCount() int {
	n := 0
	for _, groups := range p.buckets {
		for _, g := range groups {
			n += len(g.Flights)
		}
	}
	return n
}

// PricingPool indexes pricing entries by id, with three derived lookup
// indices. byFlightRoute is the primary O(1) match path; the pool is built
// once per request and never re-scanned per lookup.
type PricingPool struct {
	entries       map[string]*entity.PricingEntry
	byFlight      map[string][]*entity.PricingEntry
	byRoute       map[string][]*entity.PricingEntry
	byFlightRoute map[string][]*entity.PricingEntry
}

// NewPricingPool creates an empty pricing pool
func NewPricingPool() *PricingPool {
	return &PricingPool{
		entries:       make(map[string]*entity.PricingEntry),
		byFlight:      make(map[string][]*entity.PricingEntry),
		byRoute:       make(map[string][]*entity.PricingEntry),
		byFlightRoute: make(map[string][]*entity.PricingEntry),
	}
}

// Add folds a pricing entry into the pool. Entries sharing an id merge their
// per-program quotes; indices are maintained incrementally.
func (p *PricingPool) Add(entry entity.PricingEntry) {
	if entry.ID == "" {
		entry.ID = utils.PricingID(entry.FlightNumbers, entry.Date)
	}
	if existing, ok := p.entries[entry.ID]; ok {
		existing.MergeSources(&entry)
		return
	}

	stored := entry
	p.entries[stored.ID] = &stored

	flightKey := strings.ToLower(stored.FlightNumbers)
	routeKey := stored.RouteKey()
	p.byFlight[flightKey] = append(p.byFlight[flightKey], &stored)
	p.byRoute[routeKey] = append(p.byRoute[routeKey], &stored)
	p.byFlightRoute[flightKey+":"+routeKey] = append(p.byFlightRoute[flightKey+":"+routeKey], &stored)
}

// Entry returns the entry stored under an id.
func (p *PricingPool) Entry(id string) (*entity.PricingEntry, bool) {
	entry, ok := p.entries[id]
	return entry, ok
}

// ByFlightRoute returns candidates for a "flightnumbers:ORIG-DEST" key.
func (p *PricingPool) ByFlightRoute(key string) []*entity.PricingEntry {
	return p.byFlightRoute[key]
}

// ByFlight returns candidates for a lowercased flight-number key.
func (p *PricingPool) ByFlight(flightNumbers string) []*entity.PricingEntry {
	return p.byFlight[strings.ToLower(flightNumbers)]
}

// ByRoute returns candidates for an "ORIG-DEST" key.
func (p *PricingPool) ByRoute(routeKey string) []*entity.PricingEntry {
	return p.byRoute[routeKey]
}

// Size returns the number of distinct entries in the pool.
func (p *PricingPool) Size() int {
	return len(p.entries)
}

// PoolBuilder converts per-route fetch results into the request's segment
// and pricing pools.
type PoolBuilder struct {
	logger logger.Logger
}

// NewPoolBuilder creates a new pool builder
func NewPoolBuilder(logger logger.Logger) *PoolBuilder {
	return &PoolBuilder{
		logger: logger,
	}
}

// Build assembles both pools from a batch of route results. Results flagged
// as errored are skipped entirely: an upstream failure is not "confirmed
// empty" and must not poison the pools.
//
// When the route structure describes a genuine multi-segment shape, pricing
// entries whose airport pair is not one of the structure's valid pairings
// are excluded up front, so prices from unrelated segments cannot
// false-positive match later. For direct searches, or when the structure is
// incomplete, no filtering is applied. If filtering would collapse a
// non-empty pricing set to nothing, the builder falls back to including
// everything rather than silently losing all prices.
func (b *PoolBuilder) Build(results []entity.RouteFetchResult, route *entity.RouteStructure) (*SegmentPool, *PricingPool) {
	segments := NewSegmentPool()
	pricing := NewPricingPool()

	var allPricing []entity.PricingEntry
	for _, result := range results {
		if result.Error {
			b.logger.Debug("Skipping errored route result", "route", result.RouteKey())
			continue
		}
		for _, group := range result.Groups {
			for i := range group.Flights {
				if group.Flights[i].UUID == "" {
					flight := &group.Flights[i]
					flight.UUID = utils.FlightUUID(flight.FlightNumbers, flight.DepartsAt, flight.ArrivesAt)
				}
			}
			segments.Add(group)
		}
		allPricing = append(allPricing, result.Pricing...)
	}

	selected := allPricing
	if route != nil && route.IsMultiSegment() {
		validPairs := route.ValidSegmentPairs()
		var filtered []entity.PricingEntry
		for _, entry := range allPricing {
			if validPairs[entry.RouteKey()] {
				filtered = append(filtered, entry)
			}
		}
		if len(filtered) == 0 && len(allPricing) > 0 {
			b.logger.Warn("Segment pricing filter removed every entry, keeping all",
				"route", route.Origin+"-"+route.Destination,
				"entries", len(allPricing))
		} else {
			selected = filtered
		}
	}

	for _, entry := range selected {
		pricing.Add(entry)
	}

	return segments, pricing
}
