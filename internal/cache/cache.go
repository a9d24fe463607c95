// Package cache is a read-through TTL cache for reference datasets (roster,
// department and division maps, IT review chains, settings, per-user VP
// divisions). Backend failures degrade to direct loads and are never
// returned to callers.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL is the lifetime of a cached dataset snapshot.
const DefaultTTL = 5 * time.Minute

// Dataset keys.
const (
	KeyRoster      = "roster"
	KeyDepartments = "departments"
	KeyDivisions   = "divisions"
	KeyITChains    = "it_chains"
	KeySettings    = "settings"
	vpKeyPrefix    = "vp:"
)

// VPKey is the per-user key for the VP divisions of email.
func VPKey(email string) string {
	return vpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Backend stores encoded snapshots.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Cache struct {
	backend Backend
	ttl     time.Duration
	logger  logrus.FieldLogger
	// generation increases on every invalidation; a load that observed an
	// older generation does not write its result back.
	generation atomic.Uint64
}

// New returns a cache over backend. A nil backend disables caching: every
// Fetch loads from the store.
func New(backend Backend, ttl time.Duration, logger logrus.FieldLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{backend: backend, ttl: ttl, logger: logger.WithField("component", "cache")}
}

// Enabled reports whether a backend is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.backend != nil
}

// Fetch returns the snapshot stored under key or loads, stores and returns it.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}
	dataset := datasetOf(key)

	raw, ok, err := c.backend.Get(ctx, key)
	switch {
	case err != nil:
		recordRequest(dataset, "error")
		c.logger.WithError(err).WithField("key", key).Warn("cache read failed, falling back to store")
	case ok:
		var value T
		decodeErr := json.Unmarshal(raw, &value)
		if decodeErr == nil {
			recordRequest(dataset, "hit")
			return value, nil
		}
		recordRequest(dataset, "error")
		c.logger.WithError(decodeErr).WithField("key", key).Warn("discarding undecodable cache entry")
	default:
		recordRequest(dataset, "miss")
	}

	gen := c.generation.Load()
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if c.generation.Load() != gen {
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache encode failed")
		return value, nil
	}
	if err := c.backend.Set(ctx, key, encoded, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
		return value, nil
	}
	// An invalidation that landed during Set may have deleted the key before
	// the stale write arrived. Invalidate bumps the generation before it
	// deletes, so re-checking here closes that window.
	if c.generation.Load() != gen {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("failed to drop stale cache write")
		}
	}
	return value, nil
}

// Invalidate evicts keys. Eviction failures are logged only.
func (c *Cache) Invalidate(ctx context.Context, reason string, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	c.generation.Add(1)
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"keys": keys, "reason": reason}).Warn("cache invalidation failed")
		return
	}
	recordInvalidation(reason, len(keys))
	c.logger.WithFields(logrus.Fields{"keys": keys, "reason": reason}).Debug("cache keys invalidated")
}

func datasetOf(key string) string {
	if strings.HasPrefix(key, vpKeyPrefix) {
		return "vp_divisions"
	}
	return key
}
