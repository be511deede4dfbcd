package repository

import (
	"context"

	"build-route-api/internal/domain/entity"
)

// SearchLogRepository persists one audit record per itinerary search.
type SearchLogRepository interface {
	Insert(ctx context.Context, log *entity.SearchLog) error
}
