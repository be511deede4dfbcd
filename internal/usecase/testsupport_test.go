package usecase

import (
	"context"
	"sync"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/utils"
)

// memCache is an in-memory stand-in for the Redis cache repository. A key
// that was never set reports found=false; a key set with an empty slice
// reports found=true with zero records.
type memCache struct {
	mu       sync.Mutex
	groups   map[string][]entity.AvailabilityGroup
	pricing  map[string][]entity.PricingEntry
	failGets bool
	setCalls int
}

func newMemCache() *memCache {
	return &memCache{
		groups:  make(map[string][]entity.AvailabilityGroup),
		pricing: make(map[string][]entity.PricingEntry),
	}
}

func memKey(origin, destination, date string) string {
	return origin + "-" + destination + ":" + date
}

func (m *memCache) GetGroups(ctx context.Context, origin, destination, date string) ([]entity.AvailabilityGroup, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return nil, false, entity.ErrCacheUnavailable
	}
	groups, ok := m.groups[memKey(origin, destination, date)]
	return groups, ok, nil
}

func (m *memCache) SetGroups(ctx context.Context, origin, destination, date string, groups []entity.AvailabilityGroup, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if groups == nil {
		groups = []entity.AvailabilityGroup{}
	}
	m.groups[memKey(origin, destination, date)] = groups
	m.setCalls++
	return nil
}

func (m *memCache) GetPricing(ctx context.Context, origin, destination, date string) ([]entity.PricingEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return nil, false, entity.ErrCacheUnavailable
	}
	entries, ok := m.pricing[memKey(origin, destination, date)]
	return entries, ok, nil
}

func (m *memCache) SetPricing(ctx context.Context, origin, destination, date string, entries []entity.PricingEntry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entries == nil {
		entries = []entity.PricingEntry{}
	}
	m.pricing[memKey(origin, destination, date)] = entries
	m.setCalls++
	return nil
}

// fakeSource serves canned payloads per route key and counts calls.
type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]*entity.FetchPayload
	errs     map[string]error
	calls    int
	active   int
	maxSeen  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		payloads: make(map[string]*entity.FetchPayload),
		errs:     make(map[string]error),
	}
}

func (s *fakeSource) Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchPayload, error) {
	key := req.Origin + "-" + req.Destination

	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond)

	s.mu.Lock()
	s.active--
	err := s.errs[key]
	payload := s.payloads[key]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if payload == nil {
		return &entity.FetchPayload{RateLimitRemaining: -1, RateLimitReset: -1}, nil
	}
	return payload, nil
}

func testFlight(numbers, origin, dest, departsAt, arrivesAt string, duration int, distance float64, partner bool) entity.AvailabilityFlight {
	return entity.AvailabilityFlight{
		UUID:               utils.FlightUUID(numbers, departsAt, arrivesAt),
		FlightNumbers:      numbers,
		OriginAirport:      origin,
		DestinationAirport: dest,
		DepartsAt:          departsAt,
		ArrivesAt:          arrivesAt,
		TotalDuration:      duration,
		Aircraft:           "77W",
		Distance:           distance,
		YCount:             4,
		WCount:             2,
		JCount:             2,
		YPartner:           partner,
		WPartner:           partner,
		JPartner:           partner,
	}
}

func testGroup(origin, dest, date, alliance string, flights ...entity.AvailabilityFlight) entity.AvailabilityGroup {
	return entity.AvailabilityGroup{
		OriginAirport:      origin,
		DestinationAirport: dest,
		Date:               date,
		Alliance:           alliance,
		Flights:            flights,
	}
}
