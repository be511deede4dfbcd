package usecase

import (
	"context"
	"sync"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"
)

// DefaultReliabilityTTL bounds how stale the reference table may get.
const DefaultReliabilityTTL = 5 * time.Minute

// ReliabilityCache is an explicit, injected memoization of the airline
// reliability reference table with its own refresh timestamp and TTL. It is
// owned by the process wiring, not hidden module state, so refresh timing
// is testable.
type ReliabilityCache struct {
	repo   repository.ReliabilityRepository
	ttl    time.Duration
	logger logger.Logger

	mu            sync.Mutex
	table         entity.ReliabilityTable
	lastRefreshed time.Time
}

// NewReliabilityCache creates a new reliability cache. repo may be nil, in
// which case the table is always empty.
func NewReliabilityCache(repo repository.ReliabilityRepository, ttl time.Duration, logger logger.Logger) *ReliabilityCache {
	if ttl <= 0 {
		ttl = DefaultReliabilityTTL
	}
	return &ReliabilityCache{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		table:  entity.ReliabilityTable{},
	}
}

// Table returns the current reference table, refreshing it from the
// repository when the TTL has lapsed. A failed refresh keeps serving the
// previous table.
func (c *ReliabilityCache) Table(ctx context.Context) entity.ReliabilityTable {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repo == nil || time.Since(c.lastRefreshed) < c.ttl {
		return c.table
	}

	entries, err := c.repo.GetAll(ctx)
	if err != nil {
		c.logger.Warn("Reliability table refresh failed, keeping stale table", "error", err)
		return c.table
	}

	table := make(entity.ReliabilityTable, len(entries))
	for _, entry := range entries {
		table[entry.Code] = entry
	}
	c.table = table
	c.lastRefreshed = time.Now()
	return c.table
}
