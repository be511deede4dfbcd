package usecase

import (
	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/utils"
)

// ReliabilityFilter prunes flights whose displayed availability cannot be
// trusted for planning. Interior segments demand a positive reliability
// signal; segments touching the trip's origin or destination get
// distance-aware leniency, so short legs near the endpoints survive even
// without one while long speculative hops do not.
type ReliabilityFilter struct {
	logger logger.Logger
}

// NewReliabilityFilter creates a new reliability filter
func NewReliabilityFilter(logger logger.Logger) *ReliabilityFilter {
	return &ReliabilityFilter{
		logger: logger,
	}
}

// Filter returns a new pool containing only flights that pass the
// reliability test. directDistance is the great-circle distance of the
// overall trip's endpoint pair; the allowed unreliable distance on edge
// segments is (1 - minReliabilityPercent/100) * directDistance * 2.
func (f *ReliabilityFilter) Filter(
	pool *SegmentPool,
	tripOrigin, tripDestination string,
	minReliabilityPercent float64,
	directDistance float64,
	table entity.ReliabilityTable,
) *SegmentPool {
	budget := (1 - minReliabilityPercent/100) * directDistance * 2
	filtered := NewSegmentPool()
	pruned := 0

	for _, groups := range pool.Buckets() {
		for _, group := range groups {
			edge := group.OriginAirport == tripOrigin || group.DestinationAirport == tripDestination

			kept := entity.AvailabilityGroup{
				OriginAirport:      group.OriginAirport,
				DestinationAirport: group.DestinationAirport,
				Date:               group.Date,
				Alliance:           group.Alliance,
			}
			for _, flight := range group.Flights {
				if isReliable(&flight, table) {
					kept.Flights = append(kept.Flights, flight)
					continue
				}
				if edge && flight.Distance <= budget {
					kept.Flights = append(kept.Flights, flight)
					continue
				}
				pruned++
			}
			if len(kept.Flights) > 0 {
				filtered.Add(kept)
			}
		}
	}

	if pruned > 0 {
		f.logger.Debug("Pruned unreliable flights", "pruned", pruned, "budget", budget)
	}
	return filtered
}

// isReliable reports whether a flight carries a trust signal: a
// partner-bookable flag on any cabin, or a seat count meeting the airline's
// reference-table minimum.
func isReliable(flight *entity.AvailabilityFlight, table entity.ReliabilityTable) bool {
	if flight.HasPartnerFlag() {
		return true
	}
	entry, ok := table[utils.AirlineCode(flight.FlightNumbers)]
	if !ok || entry.MinCount <= 0 {
		return false
	}
	for _, cabin := range entity.CabinClasses {
		if flight.CountFor(cabin) >= entry.MinCount {
			return true
		}
	}
	return false
}
