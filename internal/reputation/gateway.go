package reputation

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/vindexchain/ai-module/internal/cache"
	"github.com/vindexchain/ai-module/internal/metrics"
	"github.com/vindexchain/ai-module/internal/retry"
	"github.com/vindexchain/ai-module/internal/syncutil"
)

const (
	cacheKeyPrefix = "reputation:"
	cacheName      = "reputation"

	// DefaultCacheTTL is how long assessments stay fresh.
	DefaultCacheTTL = 3600 * time.Second

	writeBackTimeout  = 5 * time.Second
	writeBackAttempts = 3
)

// Gateway wraps the cache-aside protocol around assessment computation.
// Cache failures never fail a request: a read error degrades to a
// recompute, a write error is logged and swallowed.
//
// Concurrent misses for the same address serialize on a per-key lock so
// compute runs once at a time. Because the write-back is asynchronous a
// waiter can still observe a miss and recompute; that residual duplicate
// work is accepted, assessments are pure and the last write wins.
type Gateway struct {
	store  cache.Store
	ttl    time.Duration
	locks  *syncutil.ContextShardedMutex
	logger *slog.Logger
}

// NewGateway creates a gateway over the given cache store.
func NewGateway(store cache.Store, ttl time.Duration, logger *slog.Logger) *Gateway {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		store:  store,
		ttl:    ttl,
		locks:  syncutil.NewContextShardedMutex(),
		logger: logger,
	}
}

// Key returns the cache key for an address.
func Key(address string) string {
	return cacheKeyPrefix + strings.ToLower(address)
}

// GetOrCompute returns the cached assessment for address, or runs
// compute on a miss and writes the result back asynchronously. The
// second return value reports whether the result came from cache.
func (g *Gateway) GetOrCompute(ctx context.Context, address string, compute func(context.Context) (*Assessment, error)) (*Assessment, bool, error) {
	key := Key(address)

	// Fast path: no lock needed to serve a hit.
	if a, ok := g.lookup(ctx, key); ok {
		metrics.CacheHitsTotal.WithLabelValues(cacheName).Inc()
		return a, true, nil
	}

	unlock, err := g.locks.LockContext(ctx, key)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	// Another caller may have filled the entry while we waited.
	if a, ok := g.lookup(ctx, key); ok {
		metrics.CacheHitsTotal.WithLabelValues(cacheName).Inc()
		return a, true, nil
	}
	metrics.CacheMissesTotal.WithLabelValues(cacheName).Inc()

	assessment, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	g.writeBack(ctx, key, assessment)
	return assessment, false, nil
}

// lookup reads and decodes one cache entry. Corrupt entries are dropped,
// read errors degrade to a miss.
func (g *Gateway) lookup(ctx context.Context, key string) (*Assessment, bool) {
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		if err != cache.ErrMiss {
			g.logger.Warn("cache read failed, computing directly", "key", key, "error", err)
		}
		return nil, false
	}

	var cached Assessment
	if jerr := json.Unmarshal(raw, &cached); jerr != nil {
		// Corrupt entry: recompute rather than serve it
		g.logger.Warn("discarding undecodable cache entry", "key", key)
		_ = g.store.Delete(ctx, key)
		return nil, false
	}
	return &cached, true
}

// Invalidate drops the cached assessment for address.
func (g *Gateway) Invalidate(ctx context.Context, address string) error {
	return g.store.Delete(ctx, Key(address))
}

// writeBack stores the assessment asynchronously. The response path
// never waits on cache write acknowledgment.
func (g *Gateway) writeBack(ctx context.Context, key string, a *Assessment) {
	payload, err := json.Marshal(a)
	if err != nil {
		g.logger.Error("marshal assessment for cache", "key", key, "error", err)
		return
	}

	// Detached from the request context so a response sent early does
	// not cancel the write.
	wctx := context.WithoutCancel(ctx)
	go func() {
		wctx, cancel := context.WithTimeout(wctx, writeBackTimeout)
		defer cancel()

		err := retry.Do(wctx, writeBackAttempts, 100*time.Millisecond, func() error {
			return g.store.Set(wctx, key, payload, g.ttl)
		})
		if err != nil {
			metrics.CacheWriteFailuresTotal.WithLabelValues(cacheName).Inc()
			g.logger.Warn("cache write-back failed", "key", key, "error", err)
		}
	}()
}
