// Package reportcache caches serialized reports on disk, keyed by input fingerprint.
package reportcache

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"

	"github.com/codeGROOVE-dev/crossmap/pkg/report"
)

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache wraps sfcache for report caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	logger *slog.Logger
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache with disk persistence at ~/.cache/crossmap.
func New(ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "crossmap"), logger)
}

// NewWithPath creates a Cache with disk persistence at the specified path.
func NewWithPath(ttl time.Duration, cachePath string, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("crossmap", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl, logger: orDefault(logger)}, nil
}

// NewNull creates a Cache with no persistence; entries live only in memory.
func NewNull(logger *slog.Logger) *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc, logger: orDefault(logger)}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Stats returns the hit/miss counts since the cache was created.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Report returns the JSON encoding of the report stored under key, calling
// build on a miss. Concurrent callers with the same key share one build.
func (c *Cache) Report(ctx context.Context, key string, build func() *report.Report) ([]byte, error) {
	var built bool
	data, err := c.GetSet(ctx, key, func(context.Context) ([]byte, error) {
		built = true
		c.misses.Add(1)
		c.logger.Info("CACHE MISS", "key", key)

		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, build()); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return buf.Bytes(), nil
	}, c.ttl)
	if err != nil {
		return nil, err
	}

	if !built {
		c.hits.Add(1)
		c.logger.Debug("cache hit", "key", key, "bytes", len(data))
	}
	return data, nil
}
