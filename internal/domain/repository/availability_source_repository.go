package repository

import (
	"context"

	"build-route-api/internal/domain/entity"
)

// AvailabilitySource fetches normalized award availability for one route over
// a date window from the upstream partner API. Implementations map throttle
// responses to entity.ErrRateLimited (via entity.RateLimitError) and network
// or 5xx failures to entity.ErrUpstreamUnavailable.
type AvailabilitySource interface {
	Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchPayload, error)
}
