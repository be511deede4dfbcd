package repository

import (
	"context"

	"build-route-api/internal/domain/entity"
)

// ReliabilityRepository loads the airline reliability reference table.
type ReliabilityRepository interface {
	GetAll(ctx context.Context) ([]entity.AirlineReliability, error)
}
