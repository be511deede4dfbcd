package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type fakeReliabilityRepo struct {
	entries []entity.AirlineReliability
	err     error
	calls   int
}

func (r *fakeReliabilityRepo) GetAll(ctx context.Context) ([]entity.AirlineReliability, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.entries, nil
}

func TestReliabilityCacheRefreshesOnce(t *testing.T) {
	repo := &fakeReliabilityRepo{
		entries: []entity.AirlineReliability{{Code: "AY", MinCount: 2}},
	}
	cache := NewReliabilityCache(repo, time.Hour, logger.NewNop())

	table := cache.Table(context.Background())
	assert.Equal(t, 2, table["AY"].MinCount)

	cache.Table(context.Background())
	assert.Equal(t, 1, repo.calls, "fresh table must be served without a second query")
}

func TestReliabilityCacheRefreshesAfterTTL(t *testing.T) {
	repo := &fakeReliabilityRepo{}
	cache := NewReliabilityCache(repo, time.Nanosecond, logger.NewNop())

	cache.Table(context.Background())
	time.Sleep(time.Millisecond)
	cache.Table(context.Background())
	assert.Equal(t, 2, repo.calls)
}

func TestReliabilityCacheKeepsStaleOnError(t *testing.T) {
	repo := &fakeReliabilityRepo{
		entries: []entity.AirlineReliability{{Code: "AY", MinCount: 2}},
	}
	cache := NewReliabilityCache(repo, time.Nanosecond, logger.NewNop())

	cache.Table(context.Background())
	time.Sleep(time.Millisecond)

	repo.err = errors.New("connection refused")
	table := cache.Table(context.Background())
	assert.Equal(t, 2, table["AY"].MinCount, "failed refresh keeps the previous table")
}

func TestReliabilityCacheNilRepo(t *testing.T) {
	cache := NewReliabilityCache(nil, 0, logger.NewNop())
	assert.Empty(t, cache.Table(context.Background()))
}
