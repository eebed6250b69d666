package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/scenario"
)

// DefaultCacheTTL applies when NewResultCache gets a non-positive ttl.
const DefaultCacheTTL = time.Hour

const cacheKeyPrefix = "forecast:run:"

// ResultCache memoizes projection runs in Redis. Runs are pure functions of
// the scenario and the engine settings, so those two make the key.
// A nil cache or a cache without a client does nothing.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps client. client may be nil.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is attached.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key hashes the canonical JSON of the scenario together with the engine
// settings that change the output.
func Key(s *scenario.Scenario, e *projection.Engine) (string, error) {
	keyed := struct {
		Scenario  *scenario.Scenario `json:"scenario"`
		Tolerance float64            `json:"tolerance"`
		Strict    bool               `json:"strict"`
	}{Scenario: s}
	if e != nil {
		keyed.Tolerance = e.Tolerance
		keyed.Strict = e.Strict
	}
	data, err := json.Marshal(keyed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached projection for key, if any.
func (c *ResultCache) Get(ctx context.Context, key string) (*projection.Projection, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var p projection.Projection
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &p, true, nil
}

// Set stores p under key with the cache TTL.
func (c *ResultCache) Set(ctx context.Context, key string, p *projection.Projection) error {
	if !c.Enabled() || p == nil {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Run returns the cached projection for s, computing and storing it on a miss.
// Cache failures fall through to a fresh run. The bool reports a cache hit.
func (c *ResultCache) Run(ctx context.Context, e *projection.Engine, s *scenario.Scenario) (*projection.Projection, bool, error) {
	if !c.Enabled() {
		p, err := scenario.Run(ctx, e, s)
		return p, false, err
	}

	key, keyErr := Key(s, e)
	if keyErr == nil {
		if p, ok, err := c.Get(ctx, key); err == nil && ok {
			return p, true, nil
		}
	}

	p, err := scenario.Run(ctx, e, s)
	if err != nil {
		return nil, false, err
	}
	if keyErr == nil {
		_ = c.Set(ctx, key, p)
	}
	return p, false, nil
}
