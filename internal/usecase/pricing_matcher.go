package usecase

import (
	"strings"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/utils"
)

// pricingMatchTolerance allows pricing and availability timestamps for the
// same flight to disagree by a few minutes across sources.
const pricingMatchTolerance = 5 * time.Minute

// PricingMatcher resolves a composed itinerary's flights to pricing entries
// through the pricing pool's flight+route index.
type PricingMatcher struct {
	logger logger.Logger
}

// NewPricingMatcher creates a new pricing matcher
func NewPricingMatcher(logger logger.Logger) *PricingMatcher {
	return &PricingMatcher{
		logger: logger,
	}
}

// Match resolves each flight to at most one pricing entry: candidates come
// from the "flightnumbers:ORIG-DEST" index, and the first candidate whose
// departure and arrival both fall within the tolerance of the flight's own
// timestamps wins. Flights without a match simply contribute nothing; that
// is a valid outcome, not an error.
func (m *PricingMatcher) Match(flights []*entity.AvailabilityFlight, pool *PricingPool) []string {
	var ids []string
	for _, flight := range flights {
		key := strings.ToLower(flight.FlightNumbers) + ":" + flight.OriginAirport + "-" + flight.DestinationAirport
		if entry := m.matchOne(flight, pool.ByFlightRoute(key)); entry != nil {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

func (m *PricingMatcher) matchOne(flight *entity.AvailabilityFlight, candidates []*entity.PricingEntry) *entity.PricingEntry {
	flightDep, err := utils.ParseTimestamp(flight.DepartsAt)
	if err != nil {
		return nil
	}
	flightArr, err := utils.ParseTimestamp(flight.ArrivesAt)
	if err != nil {
		return nil
	}

	for _, candidate := range candidates {
		dep, err := utils.ParseTimestamp(candidate.DepartsAt)
		if err != nil {
			m.logger.Warn("Dropping pricing entry with unparseable departure", "id", candidate.ID, "departsAt", candidate.DepartsAt)
			continue
		}
		arr, err := utils.ParseTimestamp(candidate.ArrivesAt)
		if err != nil {
			m.logger.Warn("Dropping pricing entry with unparseable arrival", "id", candidate.ID, "arrivesAt", candidate.ArrivesAt)
			continue
		}
		if within(dep, flightDep, pricingMatchTolerance) && within(arr, flightArr, pricingMatchTolerance) {
			return candidate
		}
	}
	return nil
}

func within(a, b time.Time, tolerance time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
