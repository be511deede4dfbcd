package usecase

import (
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/utils"
)

// maxConnectionWindow caps the layover between adjacent legs.
const maxConnectionWindow = 24 * time.Hour

// Composer walks an ordered segment list with a backtracking depth-first
// search and emits complete, non-repeating, time-feasible itineraries per
// departure date. Search state is copied on every recursion step, so a
// composer is safe to share across concurrent requests; one compose call
// itself runs single-threaded.
type Composer struct {
	logger logger.Logger
}

// NewComposer creates a new itinerary composer
func NewComposer(logger logger.Logger) *Composer {
	return &Composer{
		logger: logger,
	}
}

type pathLeg struct {
	flight *entity.AvailabilityFlight
	origin string
	dest   string
}

// Compose emits all itineraries over the segment list, bucketed by the
// departure date of the first leg. Initial states are seeded once per
// distinct date present in the first segment's groups. An empty result map
// means no itineraries exist; that is not an error.
func (c *Composer) Compose(
	pool *SegmentPool,
	segments []entity.RouteSegment,
	minConnection time.Duration,
) map[string][]*entity.ItineraryCandidate {
	results := make(map[string][]*entity.ItineraryCandidate)
	if len(segments) == 0 {
		return results
	}

	seen := make(map[string]map[string]bool)
	for _, date := range c.seedDates(pool, &segments[0]) {
		c.walk(pool, segments, date, 0, nil, map[string]bool{}, time.Time{}, minConnection, results, seen)
	}
	return results
}

// seedDates collects the distinct dates present in the first segment's
// candidate groups.
func (c *Composer) seedDates(pool *SegmentPool, first *entity.RouteSegment) []string {
	var dates []string
	distinct := make(map[string]bool)
	for _, from := range first.From {
		for _, to := range first.To {
			for _, group := range pool.Groups(from, to) {
				if !distinct[group.Date] {
					distinct[group.Date] = true
					dates = append(dates, group.Date)
				}
			}
		}
	}
	return dates
}

func (c *Composer) walk(
	pool *SegmentPool,
	segments []entity.RouteSegment,
	date string,
	segIdx int,
	path []pathLeg,
	visited map[string]bool,
	prevArrival time.Time,
	minConnection time.Duration,
	results map[string][]*entity.ItineraryCandidate,
	seen map[string]map[string]bool,
) {
	if segIdx == len(segments) {
		c.record(date, path, results, seen)
		return
	}

	seg := &segments[segIdx]
	for _, from := range seg.From {
		for _, to := range seg.To {
			for _, group := range pool.Groups(from, to) {
				// Only the first segment is pinned to the target date;
				// later legs are constrained by the connection window.
				if segIdx == 0 && group.Date != date {
					continue
				}
				if !seg.AllowsAlliance(group.Alliance) {
					continue
				}
				for i := range group.Flights {
					c.tryFlight(pool, segments, date, segIdx, path, visited, prevArrival,
						minConnection, group, &group.Flights[i], results, seen)
				}
			}
		}
	}
}

func (c *Composer) tryFlight(
	pool *SegmentPool,
	segments []entity.RouteSegment,
	date string,
	segIdx int,
	path []pathLeg,
	visited map[string]bool,
	prevArrival time.Time,
	minConnection time.Duration,
	group *entity.AvailabilityGroup,
	flight *entity.AvailabilityFlight,
	results map[string][]*entity.ItineraryCandidate,
	seen map[string]map[string]bool,
) {
	if segIdx == 0 && visited[group.OriginAirport] {
		return
	}
	if visited[group.DestinationAirport] {
		return
	}
	// Legs must chain: a hub set on both sides of a segment boundary still
	// composes one continuous path.
	if len(path) > 0 && group.OriginAirport != path[len(path)-1].dest {
		return
	}

	departure, err := utils.ParseTimestamp(flight.DepartsAt)
	if err != nil {
		c.logger.Warn("Dropping flight with unparseable departure", "uuid", flight.UUID, "departsAt", flight.DepartsAt)
		return
	}
	arrival, err := utils.ParseTimestamp(flight.ArrivesAt)
	if err != nil {
		c.logger.Warn("Dropping flight with unparseable arrival", "uuid", flight.UUID, "arrivesAt", flight.ArrivesAt)
		return
	}

	if len(path) > 0 {
		gap := departure.Sub(prevArrival)
		if gap < minConnection || gap > maxConnectionWindow {
			return
		}
	}

	// Copy-on-recurse: the caller's path and visited set stay untouched
	// when this branch backtracks.
	nextPath := make([]pathLeg, len(path), len(path)+1)
	copy(nextPath, path)
	nextPath = append(nextPath, pathLeg{
		flight: flight,
		origin: group.OriginAirport,
		dest:   group.DestinationAirport,
	})

	nextVisited := make(map[string]bool, len(visited)+2)
	for airport := range visited {
		nextVisited[airport] = true
	}
	nextVisited[group.OriginAirport] = true
	nextVisited[group.DestinationAirport] = true

	c.walk(pool, segments, date, segIdx+1, nextPath, nextVisited, arrival, minConnection, results, seen)
}

func (c *Composer) record(
	date string,
	path []pathLeg,
	results map[string][]*entity.ItineraryCandidate,
	seen map[string]map[string]bool,
) {
	if len(path) == 0 {
		return
	}

	candidate := buildCandidate(date, path)
	if seen[date] == nil {
		seen[date] = make(map[string]bool)
	}
	key := candidate.PathKey()
	if seen[date][key] {
		return
	}
	seen[date][key] = true
	results[date] = append(results[date], candidate)
}

func buildCandidate(date string, path []pathLeg) *entity.ItineraryCandidate {
	first := path[0]
	last := path[len(path)-1]

	route := first.origin
	uuids := make([]string, 0, len(path))
	var connections []string
	for i, leg := range path {
		uuids = append(uuids, leg.flight.UUID)
		route += "-" + leg.dest
		if i < len(path)-1 {
			connections = append(connections, leg.dest)
		}
	}

	duration := 0
	dep, depErr := utils.ParseTimestamp(first.flight.DepartsAt)
	arr, arrErr := utils.ParseTimestamp(last.flight.ArrivesAt)
	if depErr == nil && arrErr == nil {
		duration = int(arr.Sub(dep) / time.Minute)
	}

	return &entity.ItineraryCandidate{
		Route:         route,
		Date:          date,
		FlightUUIDs:   uuids,
		Connections:   connections,
		DepartsAt:     first.flight.DepartsAt,
		ArrivesAt:     last.flight.ArrivesAt,
		TotalDuration: duration,
	}
}
