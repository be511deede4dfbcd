package repository

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
)

const (
	availabilityNamespace = "availability"
	pricingNamespace      = "pricing"
)

// RedisCacheRepository implements AvailabilityCacheRepository and
// PricingCacheRepository against a Redis store. Payloads are stored as
// length-prefixed gzip-compressed JSON: a 4-byte big-endian uncompressed
// length followed by the gzip stream.
type RedisCacheRepository struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisCacheRepository creates a new Redis-backed cache repository
func NewRedisCacheRepository(client *redis.Client, logger logger.Logger) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
		logger: logger,
	}
}

var _ repository.AvailabilityCacheRepository = (*RedisCacheRepository)(nil)
var _ repository.PricingCacheRepository = (*RedisCacheRepository)(nil)

// GetGroups probes the availability namespace for one (route, date) key.
func (r *RedisCacheRepository) GetGroups(ctx context.Context, origin, destination, date string) ([]entity.AvailabilityGroup, bool, error) {
	var groups []entity.AvailabilityGroup
	found, err := r.get(ctx, cacheKey(availabilityNamespace, origin, destination, date), &groups)
	if err != nil {
		return nil, false, err
	}
	return groups, found, nil
}

// SetGroups writes one (route, date) availability record. An empty slice is
// a valid record meaning "no inventory"; it must round-trip as found=true.
func (r *RedisCacheRepository) SetGroups(ctx context.Context, origin, destination, date string, groups []entity.AvailabilityGroup, ttl time.Duration) error {
	if groups == nil {
		groups = []entity.AvailabilityGroup{}
	}
	return r.set(ctx, cacheKey(availabilityNamespace, origin, destination, date), groups, ttl)
}

// GetPricing probes the pricing namespace for one (route, date) key.
func (r *RedisCacheRepository) GetPricing(ctx context.Context, origin, destination, date string) ([]entity.PricingEntry, bool, error) {
	var entries []entity.PricingEntry
	found, err := r.get(ctx, cacheKey(pricingNamespace, origin, destination, date), &entries)
	if err != nil {
		return nil, false, err
	}
	return entries, found, nil
}

// SetPricing writes one (route, date) pricing record.
func (r *RedisCacheRepository) SetPricing(ctx context.Context, origin, destination, date string, entries []entity.PricingEntry, ttl time.Duration) error {
	if entries == nil {
		entries = []entity.PricingEntry{}
	}
	return r.set(ctx, cacheKey(pricingNamespace, origin, destination, date), entries, ttl)
}

func cacheKey(namespace, origin, destination, date string) string {
	return fmt.Sprintf("%s:%s-%s:%s", namespace, origin, destination, date)
}

func (r *RedisCacheRepository) get(ctx context.Context, key string, out interface{}) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("%w: no client", entity.ErrCacheUnavailable)
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", entity.ErrCacheUnavailable, key, err)
	}

	decoded, err := decompress(raw)
	if err != nil {
		// A corrupt entry behaves like a miss so it gets rewritten.
		r.logger.Warn("Dropping corrupt cache entry", "key", key, "error", err)
		return false, nil
	}
	if err := json.Unmarshal(decoded, out); err != nil {
		r.logger.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *RedisCacheRepository) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("%w: no client", entity.ErrCacheUnavailable)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	compressed, err := compress(raw)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, compressed, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", entity.ErrCacheUnavailable, key, err)
	}
	return nil
}

// compress prefixes the gzip stream with the 4-byte big-endian length of the
// uncompressed payload.
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("payload too short: %d bytes", len(raw))
	}
	expected := binary.BigEndian.Uint32(raw[:4])
	zr, err := gzip.NewReader(bytes.NewReader(raw[4:]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	decoded, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if uint32(len(decoded)) != expected {
		return nil, fmt.Errorf("length mismatch: header %d, body %d", expected, len(decoded))
	}
	return decoded, nil
}
