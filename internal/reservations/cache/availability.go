// Package cache memoizes availability grids in Redis. Entries are keyed by
// a per-hotel version counter that every reservation write bumps, so a
// bump orphans all older entries at once and they age out by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"frontdesk/pkg/availability"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/metrics"
	"frontdesk/pkg/resilience"
)

// Key identifies one computed grid. Fingerprint covers the hotel settings
// the grid was computed from.
type Key struct {
	HotelID     string
	Version     int64
	Fingerprint string
	From        string
	To          string
}

type AvailabilityCache struct {
	rdb     *redis.Client
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	prefix  string
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewAvailabilityCache returns a cache that does nothing when rdb is nil.
func NewAvailabilityCache(
	rdb *redis.Client,
	breaker *resilience.CircuitBreaker,
	ttl time.Duration,
	prefix string,
	m *metrics.Metrics,
	log *logger.Logger,
) *AvailabilityCache {
	return &AvailabilityCache{
		rdb:     rdb,
		breaker: breaker,
		ttl:     ttl,
		prefix:  prefix,
		metrics: m,
		log:     log,
	}
}

func (c *AvailabilityCache) versionKey(hotelID string) string {
	return fmt.Sprintf("%savail:%s:ver", c.prefix, hotelID)
}

func (c *AvailabilityCache) entryKey(k Key) string {
	return fmt.Sprintf("%savail:%s:v%d:%s:%s:%s", c.prefix, k.HotelID, k.Version, k.Fingerprint, k.From, k.To)
}

// Version reports the hotel's current reservation-set version. ok is false
// when Redis cannot answer, in which case callers skip the cache.
func (c *AvailabilityCache) Version(ctx context.Context, hotelID string) (int64, bool) {
	if c.rdb == nil {
		return 0, false
	}
	v, err := resilience.Call(ctx, c.breaker, func() (int64, error) {
		v, err := c.rdb.Get(ctx, c.versionKey(hotelID)).Int64()
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return v, err
	})
	if err != nil {
		c.recordError("version", hotelID, err)
		return 0, false
	}
	return v, true
}

func (c *AvailabilityCache) Get(ctx context.Context, k Key) (*availability.AvailabilityByDate, bool) {
	if c.rdb == nil {
		return nil, false
	}
	data, err := resilience.Call(ctx, c.breaker, func() ([]byte, error) {
		data, err := c.rdb.Get(ctx, c.entryKey(k)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.recordError("get", k.HotelID, err)
		return nil, false
	}
	if data == nil {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss()
		}
		return nil, false
	}

	var grid availability.AvailabilityByDate
	if err := json.Unmarshal(data, &grid); err != nil {
		c.recordError("decode", k.HotelID, err)
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit()
	}
	return &grid, true
}

func (c *AvailabilityCache) Set(ctx context.Context, k Key, grid *availability.AvailabilityByDate) {
	if c.rdb == nil || grid == nil {
		return
	}
	data, err := json.Marshal(grid)
	if err != nil {
		c.recordError("encode", k.HotelID, err)
		return
	}
	_, err = resilience.Call(ctx, c.breaker, func() (string, error) {
		return c.rdb.Set(ctx, c.entryKey(k), data, c.ttl).Result()
	})
	if err != nil {
		c.recordError("set", k.HotelID, err)
	}
}

// Invalidate bumps the hotel's version. If Redis is down the stale entries
// live until their TTL.
func (c *AvailabilityCache) Invalidate(ctx context.Context, hotelID string) {
	if c.rdb == nil {
		return
	}
	_, err := resilience.Call(ctx, c.breaker, func() (int64, error) {
		return c.rdb.Incr(ctx, c.versionKey(hotelID)).Result()
	})
	if err != nil {
		c.recordError("invalidate", hotelID, err)
	}
}

func (c *AvailabilityCache) recordError(op, hotelID string, err error) {
	if c.metrics != nil {
		c.metrics.RecordCacheError()
	}
	c.log.Warn("Availability cache unavailable",
		"operation", op,
		"hotel_id", hotelID,
		"error", err,
	)
}
