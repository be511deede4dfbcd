package repository

import (
	"context"
	"time"

	"build-route-api/internal/domain/entity"
)

// AvailabilityCacheRepository stores per-(route, date) availability groups in
// a TTL-capable external cache. The found flag distinguishes an absent key
// (must fetch) from a present-but-empty record (authoritative "no inventory",
// must not re-fetch); the two must never be conflated.
type AvailabilityCacheRepository interface {
	GetGroups(ctx context.Context, origin, destination, date string) (groups []entity.AvailabilityGroup, found bool, err error)
	SetGroups(ctx context.Context, origin, destination, date string, groups []entity.AvailabilityGroup, ttl time.Duration) error
}

// PricingCacheRepository stores per-(route, date) pricing entries under the
// same key scheme as availability groups, in its own namespace.
type PricingCacheRepository interface {
	GetPricing(ctx context.Context, origin, destination, date string) (entries []entity.PricingEntry, found bool, err error)
	SetPricing(ctx context.Context, origin, destination, date string, entries []entity.PricingEntry, ttl time.Duration) error
}
