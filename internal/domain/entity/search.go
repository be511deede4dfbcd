package entity

import "time"

// SearchParams carries one itinerary search request into the engine.
// Route may be nil, in which case a direct Origin->Destination structure
// is assumed. DirectDistance (miles) is supplied by the route layer when
// known; zero means "derive from observed availability".
type SearchParams struct {
	Origin                string          `json:"origin"`
	Destination           string          `json:"destination"`
	Route                 *RouteStructure `json:"route,omitempty"`
	StartDate             string          `json:"startDate"`
	EndDate               string          `json:"endDate"`
	MaxStops              int             `json:"maxStops"`
	Cabin                 string          `json:"cabin,omitempty"`
	Carriers              []string        `json:"carriers,omitempty"`
	Seats                 int             `json:"seats,omitempty"`
	MinReliabilityPercent float64         `json:"minReliabilityPercent"`
	MinConnectionMinutes  int             `json:"minConnectionMinutes,omitempty"`
	DirectDistance        float64         `json:"directDistance,omitempty"`
}

// SearchResult is the engine's answer: date-bucketed itinerary candidates
// plus lookup tables for the flight and pricing records they reference.
// Empty maps with a nil error mean "no inventory", which is a valid outcome.
type SearchResult struct {
	Itineraries map[string][]*ItineraryCandidate `json:"itineraries"`
	Flights     map[string]*AvailabilityFlight   `json:"flights"`
	Pricing     map[string]*PricingEntry         `json:"pricing"`

	// FailedRoutes lists route keys whose upstream fetch failed; the rest
	// of the result was still composed from the surviving routes.
	FailedRoutes []string `json:"failedRoutes,omitempty"`
}

// FetchRequest is one upstream availability call over a date window.
type FetchRequest struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Cabin       string
	Carriers    []string
	Seats       int
}

// FetchPayload is a successful upstream response: zero or more availability
// groups and pricing entries, plus rate-limit metadata when the upstream
// exposed it (-1 when absent).
type FetchPayload struct {
	Groups             []AvailabilityGroup
	Pricing            []PricingEntry
	RateLimitRemaining int
	RateLimitReset     int
}

// RouteFetchResult is one route's contribution to pool building: either an
// error marker (empty data, skipped by the builder) or a payload of groups
// and pricing entries, whether cached or freshly fetched.
type RouteFetchResult struct {
	Origin      string
	Destination string
	Error       bool
	Groups      []AvailabilityGroup
	Pricing     []PricingEntry
}

// RouteKey returns the "ORIGIN-DESTINATION" key for this result.
func (r *RouteFetchResult) RouteKey() string {
	return r.Origin + "-" + r.Destination
}

// SearchLog is the per-search audit record persisted by the optional
// search-log repository.
type SearchLog struct {
	ID             string    `bson:"_id,omitempty"`
	RequestID      string    `bson:"requestId"`
	Origin         string    `bson:"origin"`
	Destination    string    `bson:"destination"`
	StartDate      string    `bson:"startDate"`
	EndDate        string    `bson:"endDate"`
	RouteCount     int       `bson:"routeCount"`
	FetchedRoutes  int       `bson:"fetchedRoutes"`
	FailedRoutes   []string  `bson:"failedRoutes,omitempty"`
	ItineraryCount int       `bson:"itineraryCount"`
	DurationMs     int64     `bson:"durationMs"`
	CreatedAt      time.Time `bson:"createdAt"`
}
