package entity

// Cabin class codes used across availability and pricing records
const (
	CabinEconomy        = "Y"
	CabinPremiumEconomy = "W"
	CabinBusiness       = "J"
	CabinFirst          = "F"
)

// CabinClasses lists every cabin code in reporting order
var CabinClasses = []string{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst}

// AvailabilityFlight is one bookable flight leg instance as normalized from
// an upstream source. Records are immutable after normalization; the pipeline
// references them by UUID and never copies or mutates them, except for the
// additive cabin merge applied when the same leg is seen twice.
type AvailabilityFlight struct {
	UUID               string  `json:"uuid"`
	FlightNumbers      string  `json:"flightNumbers"`
	OriginAirport      string  `json:"originAirport"`
	DestinationAirport string  `json:"destinationAirport"`
	DepartsAt          string  `json:"departsAt"`
	ArrivesAt          string  `json:"arrivesAt"`
	TotalDuration      int     `json:"totalDuration"`
	Aircraft           string  `json:"aircraft"`
	Distance           float64 `json:"distance"`

	YCount int `json:"yCount"`
	WCount int `json:"wCount"`
	JCount int `json:"jCount"`
	FCount int `json:"fCount"`

	// Partner flags mark a cabin as bookable through partner programs,
	// the primary reliability signal for planning.
	YPartner bool `json:"yPartner"`
	WPartner bool `json:"wPartner"`
	JPartner bool `json:"jPartner"`
	FPartner bool `json:"fPartner"`
}

// CountFor returns the remaining seat count for a cabin class.
func (f *AvailabilityFlight) CountFor(cabin string) int {
	switch cabin {
	case CabinEconomy:
		return f.YCount
	case CabinPremiumEconomy:
		return f.WCount
	case CabinBusiness:
		return f.JCount
	case CabinFirst:
		return f.FCount
	}
	return 0
}

// PartnerFor returns the partner-bookable flag for a cabin class.
func (f *AvailabilityFlight) PartnerFor(cabin string) bool {
	switch cabin {
	case CabinEconomy:
		return f.YPartner
	case CabinPremiumEconomy:
		return f.WPartner
	case CabinBusiness:
		return f.JPartner
	case CabinFirst:
		return f.FPartner
	}
	return false
}

// HasPartnerFlag reports whether any cabin on this flight is partner-bookable.
func (f *AvailabilityFlight) HasPartnerFlag() bool {
	return f.YPartner || f.WPartner || f.JPartner || f.FPartner
}

// mergeFrom folds a duplicate sighting of the same leg into the receiver.
// Counts take the max, partner flags OR together; nothing is ever dropped.
func (f *AvailabilityFlight) mergeFrom(other *AvailabilityFlight) {
	f.YCount = maxInt(f.YCount, other.YCount)
	f.WCount = maxInt(f.WCount, other.WCount)
	f.JCount = maxInt(f.JCount, other.JCount)
	f.FCount = maxInt(f.FCount, other.FCount)
	f.YPartner = f.YPartner || other.YPartner
	f.WPartner = f.WPartner || other.WPartner
	f.JPartner = f.JPartner || other.JPartner
	f.FPartner = f.FPartner || other.FPartner
}

// AvailabilityGroup bundles the flights observed for one
// (origin, destination, date, alliance) quadruple. Groups are the unit of
// cache storage: one cache entry per route, date and alliance set.
type AvailabilityGroup struct {
	OriginAirport      string               `json:"originAirport"`
	DestinationAirport string               `json:"destinationAirport"`
	Date               string               `json:"date"`
	Alliance           string               `json:"alliance"`
	Flights            []AvailabilityFlight `json:"flights"`
}

// RouteKey returns the "ORIGIN-DESTINATION" key this group indexes under.
func (g *AvailabilityGroup) RouteKey() string {
	return g.OriginAirport + "-" + g.DestinationAirport
}

// AddFlight merges a flight into the group, deduplicating by Flight UUID.
func (g *AvailabilityGroup) AddFlight(flight AvailabilityFlight) {
	for i := range g.Flights {
		if g.Flights[i].UUID == flight.UUID {
			g.Flights[i].mergeFrom(&flight)
			return
		}
	}
	g.Flights = append(g.Flights, flight)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
