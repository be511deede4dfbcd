package entity

// SourcePricing is one airline program's price for a flight and date.
type SourcePricing struct {
	Source   string  `json:"source"`
	YMiles   int     `json:"yMiles"`
	WMiles   int     `json:"wMiles"`
	JMiles   int     `json:"jMiles"`
	FMiles   int     `json:"fMiles"`
	Taxes    float64 `json:"taxes"`
	Currency string  `json:"currency"`
}

// PricingEntry is one priced offer keyed by (flight numbers, date). When
// several airline programs price the same physical flight and date, their
// quotes are merged into a single entry's Pricing list.
type PricingEntry struct {
	ID                 string          `json:"id"`
	FlightNumbers      string          `json:"flightNumbers"`
	Date               string          `json:"date"`
	OriginAirport      string          `json:"originAirport"`
	DestinationAirport string          `json:"destinationAirport"`
	DepartsAt          string          `json:"departsAt"`
	ArrivesAt          string          `json:"arrivesAt"`
	Pricing            []SourcePricing `json:"pricing"`
}

// RouteKey returns the "ORIGIN-DESTINATION" key for this entry's segment.
func (p *PricingEntry) RouteKey() string {
	return p.OriginAirport + "-" + p.DestinationAirport
}

// MergeSources appends quotes from a duplicate entry, skipping programs
// already present.
func (p *PricingEntry) MergeSources(other *PricingEntry) {
	for _, src := range other.Pricing {
		seen := false
		for _, existing := range p.Pricing {
			if existing.Source == src.Source {
				seen = true
				break
			}
		}
		if !seen {
			p.Pricing = append(p.Pricing, src)
		}
	}
}
