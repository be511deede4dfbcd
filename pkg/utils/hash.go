package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrInvalidDateRange is returned when a date window's end precedes its start.
var ErrInvalidDateRange = errors.New("end date precedes start date")

// flightNamespace seeds the deterministic UUIDv5 derivation for flight identity.
// Changing it invalidates every cached record, so it is fixed.
var flightNamespace = uuid.MustParse("8e7f2f60-41b4-4c19-9d24-6a1f0a3d9b11")

// FlightUUID derives the deterministic identity of one flight leg instance
// from its flight numbers and scheduled timestamps. The same input triple
// always yields the same UUID, across calls and across processes.
func FlightUUID(flightNumbers, departsAt, arrivesAt string) string {
	key := fmt.Sprintf("%s|%s|%s", strings.ToUpper(flightNumbers), departsAt, arrivesAt)
	return uuid.NewSHA1(flightNamespace, []byte(key)).String()
}

// PricingID derives the deterministic identity of a priced offer from its
// flight numbers and travel date.
func PricingID(flightNumbers, date string) string {
	key := fmt.Sprintf("%s|%s", strings.ToUpper(flightNumbers), date)
	return uuid.NewSHA1(flightNamespace, []byte(key)).String()
}

// AirlineCode extracts the carrier prefix from a flight-number string,
// e.g. "BA112" -> "BA". Multi-flight strings use the first number.
func AirlineCode(flightNumbers string) string {
	first := flightNumbers
	if idx := strings.IndexAny(flightNumbers, ",/ "); idx >= 0 {
		first = flightNumbers[:idx]
	}
	for i, r := range first {
		if unicode.IsDigit(r) {
			return strings.ToUpper(first[:i])
		}
	}
	return strings.ToUpper(first)
}
