package podds

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/internal/metrics"
)

// SimCache is an optional Redis-backed cache for simulation results. A run is
// keyed by a hash of everything that determines its output, so a hit is always
// equivalent to recomputing. Entries carry a short TTL; the cache is a
// convenience, never a system of record, and the engine works without one.
type SimCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSimCache wraps a Redis client with the configured TTL
func NewSimCache(client redis.Cmdable) *SimCache {
	return &SimCache{
		client: client,
		ttl:    time.Duration(Config.SimCacheTTLMinutes) * time.Minute,
	}
}

// Key derives the cache key for a simulation input. Unseeded runs are not
// cacheable (their output is intentionally non-reproducible) and get an
// empty key.
func (c *SimCache) Key(in SimulationInput) string {
	if !in.Seeded {
		return ""
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%.6f|%.6f|%.4f|%.4f|%d|%d",
		in.HomeLambda, in.AwayLambda, in.HomeVariance, in.AwayVariance, in.Trials, in.Seed)
	return fmt.Sprintf("podds:sim:%x", h.Sum64())
}

// Get returns a cached result for the input, or nil on a miss. Redis errors
// degrade to a miss; the caller just recomputes.
func (c *SimCache) Get(ctx context.Context, in SimulationInput) *SimulationResult {
	key := c.Key(in)
	if key == "" {
		return nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Simulation cache read failed", key, err)
		}
		metrics.SimCacheMisses.Inc()
		return nil
	}

	var result SimulationResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("Discarding unreadable cached simulation", key, err)
		metrics.SimCacheMisses.Inc()
		return nil
	}

	metrics.SimCacheHits.Inc()
	return &result
}

// Put stores a result under the input's key with the cache TTL
func (c *SimCache) Put(ctx context.Context, in SimulationInput, result *SimulationResult) {
	key := c.Key(in)
	if key == "" || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("Failed to encode simulation for cache", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("Simulation cache write failed", key, err)
	}
}
