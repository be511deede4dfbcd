package entity

import (
	"errors"
	"fmt"
	"time"
)

// Engine error kinds. Every error crossing the search facade boundary wraps
// one of these sentinels so callers can branch with errors.Is.
var (
	// ErrRateLimited marks a 429-equivalent upstream response.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrUpstreamUnavailable marks a network failure or 5xx from upstream.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCacheUnavailable marks an unreachable cache store. Callers degrade
	// to always-fetch; this never fails a search.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidRouteStructure marks a malformed segment list. Rejected
	// before any cache or network work begins.
	ErrInvalidRouteStructure = errors.New("invalid route structure")
)

// RateLimitError wraps ErrRateLimited with the upstream's retry-after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limited, retry after %s", e.RetryAfter)
}

// Unwrap lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
