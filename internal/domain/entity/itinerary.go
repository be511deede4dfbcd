package entity

import "strings"

// RouteSegment is one directed leg of a requested route shape. From and To
// list the airports allowed on each side; Alliances, when non-empty, is an
// allow-list constraining which availability groups may serve this leg.
type RouteSegment struct {
	From      []string `json:"from"`
	To        []string `json:"to"`
	Alliances []string `json:"alliances,omitempty"`
}

// AllowsAlliance reports whether a group alliance may serve this segment.
// An empty allow-list admits everything.
func (s *RouteSegment) AllowsAlliance(alliance string) bool {
	if len(s.Alliances) == 0 {
		return true
	}
	for _, a := range s.Alliances {
		if a == alliance {
			return true
		}
	}
	return false
}

// RouteStructure describes the abstract path shape of a search: a direct
// O->D, or O->A->B->D with per-segment hub sets. The segment airport lists
// drive both composition and early pricing-pool filtering.
type RouteStructure struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Segments    []RouteSegment `json:"segments"`
}

// Direct builds the single-segment structure for a nonstop O->D search.
func Direct(origin, destination string) *RouteStructure {
	return &RouteStructure{
		Origin:      origin,
		Destination: destination,
		Segments: []RouteSegment{
			{From: []string{origin}, To: []string{destination}},
		},
	}
}

// Validate rejects malformed structures before any cache or network work.
func (r *RouteStructure) Validate() error {
	if r.Origin == "" || r.Destination == "" || len(r.Segments) == 0 {
		return ErrInvalidRouteStructure
	}
	for _, seg := range r.Segments {
		if len(seg.From) == 0 || len(seg.To) == 0 {
			return ErrInvalidRouteStructure
		}
	}
	if !contains(r.Segments[0].From, r.Origin) {
		return ErrInvalidRouteStructure
	}
	if !contains(r.Segments[len(r.Segments)-1].To, r.Destination) {
		return ErrInvalidRouteStructure
	}
	return nil
}

// IsMultiSegment reports whether the structure describes a genuine
// multi-segment shape, i.e. more than one leg with airports on both sides.
func (r *RouteStructure) IsMultiSegment() bool {
	if len(r.Segments) < 2 {
		return false
	}
	for _, seg := range r.Segments {
		if len(seg.From) == 0 || len(seg.To) == 0 {
			return false
		}
	}
	return true
}

// ValidSegmentPairs returns the set of "ORIGIN-DESTINATION" keys admitted by
// the structure's per-segment airport lists.
func (r *RouteStructure) ValidSegmentPairs() map[string]bool {
	pairs := make(map[string]bool)
	for _, seg := range r.Segments {
		for _, from := range seg.From {
			for _, to := range seg.To {
				if from != to {
					pairs[from+"-"+to] = true
				}
			}
		}
	}
	return pairs
}

// RoutePairs returns every distinct (origin, destination) pair the structure
// may need availability for, in segment order.
func (r *RouteStructure) RoutePairs() []RoutePair {
	seen := make(map[string]bool)
	var pairs []RoutePair
	for _, seg := range r.Segments {
		for _, from := range seg.From {
			for _, to := range seg.To {
				if from == to {
					continue
				}
				key := from + "-" + to
				if !seen[key] {
					seen[key] = true
					pairs = append(pairs, RoutePair{Origin: from, Destination: to})
				}
			}
		}
	}
	return pairs
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// RoutePair is one directed airport pair.
type RoutePair struct {
	Origin      string
	Destination string
}

// Key returns the "ORIGIN-DESTINATION" route key.
func (p RoutePair) Key() string {
	return p.Origin + "-" + p.Destination
}

// ItineraryCandidate is one composed, bookable path for a departure date.
// FlightUUIDs reference AvailabilityFlight records in the search result's
// flight map; PricingIDs reference the pricing map after enrichment.
type ItineraryCandidate struct {
	Route            string             `json:"route"`
	Date             string             `json:"date"`
	FlightUUIDs      []string           `json:"itinerary"`
	Connections      []string           `json:"connections,omitempty"`
	DepartsAt        string             `json:"departsAt"`
	ArrivesAt        string             `json:"arrivesAt"`
	TotalDuration    int                `json:"totalDuration"`
	ClassPercentages map[string]float64 `json:"classPercentages,omitempty"`
	PricingIDs       []string           `json:"pricingIds,omitempty"`
}

// PathKey returns the exact path identity used for per-date deduplication.
func (c *ItineraryCandidate) PathKey() string {
	return strings.Join(c.FlightUUIDs, "|")
}
