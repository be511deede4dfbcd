package utils

import "time"

// DateLayout is the calendar-date format used in cache keys and group records
const DateLayout = "2006-01-02"

// TimestampLayout is the ISO timestamp format used by upstream payloads.
// Upstream timestamps carry no timezone suffix; they are local to the airport.
const TimestampLayout = "2006-01-02T15:04:05"

// DatesBetween returns the inclusive sequence of calendar dates between
// start and end, formatted as YYYY-MM-DD. Returns an error when either
// bound is malformed or end precedes start.
func DatesBetween(start, end string) ([]string, error) {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// ParseTimestamp parses an upstream ISO timestamp without timezone suffix.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(TimestampLayout, value)
}
