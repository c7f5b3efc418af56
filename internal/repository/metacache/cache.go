// Package metacache caches enrichment metadata lookups in a key-value
// store. Lookups are keyed by title hash; negative results ("TMDB knows
// nothing about this title") are cached too, so repeated misses do not hit
// the provider.
package metacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reelrank/internal/db"
	"github.com/kailas-cloud/reelrank/internal/domain"
)

const cacheKeyPrefix = "reelrank:meta_cache:"

// store is the consumer interface for the metadata cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Provider is the wrapped metadata lookup contract.
type Provider interface {
	Lookup(ctx context.Context, title string) (*domain.Metadata, error)
}

// CachedProvider is a caching decorator over a metadata Provider.
type CachedProvider struct {
	inner      Provider
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Provider,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns cached metadata or calls the inner provider. A cached
// "null" entry is a remembered negative result and returns (nil, nil).
// Inner errors are never cached.
func (c *CachedProvider) Lookup(ctx context.Context, title string) (*domain.Metadata, error) {
	key := c.cacheKey(title)

	if meta, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return meta, nil
	}

	c.incCache("miss")

	meta, err := c.inner.Lookup(ctx, title)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, meta)
	return meta, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedProvider) cacheKey(title string) string {
	h := sha256.Sum256([]byte(title))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedProvider) getFromCache(ctx context.Context, key string) (*domain.Metadata, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached metadata", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var meta *domain.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		c.logger.Warn("Failed to parse cached metadata", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return meta, true
}

func (c *CachedProvider) putToCache(ctx context.Context, key string, meta *domain.Metadata) {
	data, err := json.Marshal(meta)
	if err != nil {
		c.logger.Warn("Failed to encode metadata for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache metadata", zap.String("key", key), zap.Error(err))
	}
}
