package usecase

import (
	"math"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/utils"
)

// CalculateClassPercentages derives, per cabin class, the fraction of total
// itinerary duration for which that class has seat availability.
//
// A flight's count for a class is zeroed when the flight's own duration
// share exceeds (1 - minReliabilityPercent/100) of the itinerary total and
// the flight carries no reliability exemption for that class (partner flag
// on the cabin, or a reference-table exemption for its carrier). Economy is
// reported as 100 only when every flight retains a positive economy count
// after adjustment; the premium cabins report the duration-weighted
// percentage of flights retaining a positive count.
func CalculateClassPercentages(
	flights []*entity.AvailabilityFlight,
	minReliabilityPercent float64,
	table entity.ReliabilityTable,
) map[string]float64 {
	percentages := make(map[string]float64, len(entity.CabinClasses))
	for _, cabin := range entity.CabinClasses {
		percentages[cabin] = 0
	}
	if len(flights) == 0 {
		return percentages
	}

	total := 0
	for _, flight := range flights {
		total += flight.TotalDuration
	}
	if total <= 0 {
		return percentages
	}

	shareLimit := 1 - minReliabilityPercent/100

	for _, cabin := range entity.CabinClasses {
		positiveDuration := 0
		allPositive := true
		for _, flight := range flights {
			count := flight.CountFor(cabin)
			share := float64(flight.TotalDuration) / float64(total)
			if count > 0 && share > shareLimit && !classExempt(flight, cabin, table) {
				count = 0
			}
			if count > 0 {
				positiveDuration += flight.TotalDuration
			} else {
				allPositive = false
			}
		}

		if cabin == entity.CabinEconomy {
			if allPositive {
				percentages[cabin] = 100
			}
			continue
		}
		percentages[cabin] = math.Round(float64(positiveDuration)/float64(total)*10000) / 100
	}
	return percentages
}

// classExempt reports whether a flight's class escapes reliability
// suppression: the cabin is partner-bookable on this flight, or the
// carrier's reference entry exempts the cabin.
func classExempt(flight *entity.AvailabilityFlight, cabin string, table entity.ReliabilityTable) bool {
	if flight.PartnerFor(cabin) {
		return true
	}
	entry, ok := table[utils.AirlineCode(flight.FlightNumbers)]
	if !ok {
		return false
	}
	return entry.Exempts(cabin)
}
