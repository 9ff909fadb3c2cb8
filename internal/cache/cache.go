// Package cache stores finished extraction results keyed by the SHA-256 of
// the source document. Cache trouble never fails an extraction; it is logged
// and treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/metrics"
)

type Cache struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New wraps store. A nil store yields a cache that always misses.
func New(store Store, logger *slog.Logger, m *metrics.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger, metrics: m}
}

func (c *Cache) Get(ctx context.Context, key string) (entity.ExtractionResult, bool) {
	if c == nil || c.store == nil {
		return entity.ExtractionResult{}, false
	}
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		c.metrics.CacheError()
		return entity.ExtractionResult{}, false
	}
	if !ok {
		c.metrics.CacheMiss()
		return entity.ExtractionResult{}, false
	}
	if err := ValidateEntry(payload); err != nil {
		c.logger.Warn("discarding invalid cache entry", "key", key, "error", err)
		c.metrics.CacheError()
		return entity.ExtractionResult{}, false
	}
	var res entity.ExtractionResult
	if err := json.Unmarshal(payload, &res); err != nil {
		c.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		c.metrics.CacheError()
		return entity.ExtractionResult{}, false
	}
	if len(res.Rows) == 0 {
		c.metrics.CacheMiss()
		return entity.ExtractionResult{}, false
	}
	c.metrics.CacheHit()
	res.CacheHit = true
	return res, true
}

// Put persists res unless it has no rows or carries an error.
func (c *Cache) Put(ctx context.Context, key string, res entity.ExtractionResult) {
	if c == nil || c.store == nil || len(res.Rows) == 0 || res.Error != "" {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		c.metrics.CacheError()
		return
	}
	if err := c.store.Put(ctx, key, payload); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
		c.metrics.CacheError()
		return
	}
	c.metrics.CacheWrite()
	c.logger.Debug("cache entry written", "key", key, "rows", len(res.Rows))
}

func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}
