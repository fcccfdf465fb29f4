package events

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

const DefaultCacheTTL = time.Hour

// DefaultLoadTimeout bounds a shared load, which no single caller can cancel.
const DefaultLoadTimeout = 2 * time.Minute

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

type Loader interface {
	Load(ctx context.Context, date civil.Date) ([]gdelt.EnrichedEvent, error)
}

type LoaderFunc func(ctx context.Context, date civil.Date) ([]gdelt.EnrichedEvent, error)

func (f LoaderFunc) Load(ctx context.Context, date civil.Date) ([]gdelt.EnrichedEvent, error) {
	return f(ctx, date)
}

type cacheEntry struct {
	rows      []gdelt.EnrichedEvent
	expiresAt time.Time
}

// ResultCache memoizes one loader result per date for a fixed TTL. Expiry is
// absolute from the time of the load; reads never extend it.
type ResultCache struct {
	loader      Loader
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	observer    Observer

	mu      sync.Mutex
	entries map[civil.Date]cacheEntry
	group   singleflight.Group
}

type CacheOption func(*ResultCache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *ResultCache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

func WithCacheObserver(o Observer) CacheOption {
	return func(c *ResultCache) {
		if o != nil {
			c.observer = o
		}
	}
}

func NewResultCache(loader Loader, ttl time.Duration, opts ...CacheOption) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &ResultCache{
		loader:      loader,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		observer:    nopObserver{},
		entries:     make(map[civil.Date]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResultCache) TTL() time.Duration { return c.ttl }

// GetOrFetch returns the cached rows for date, loading them on a miss.
// Concurrent misses for the same date share one loader call. The shared call
// is detached from every caller's cancellation and bounded by the load
// timeout; a caller whose ctx ends stops waiting without failing the others.
// Loader errors are returned and not cached. The returned slice is shared; do
// not modify it.
func (c *ResultCache) GetOrFetch(ctx context.Context, date civil.Date) ([]gdelt.EnrichedEvent, error) {
	if rows, ok := c.lookup(date); ok {
		c.observer.ObserveCache(CacheHit)
		return rows, nil
	}

	flight := c.group.DoChan(date.String(), func() (interface{}, error) {
		// A flight that finished between lookup and DoChan may have filled it.
		if rows, ok := c.lookup(date); ok {
			return rows, nil
		}
		c.observer.ObserveCache(CacheMiss)
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		rows, err := c.loader.Load(loadCtx, date)
		if err != nil {
			return nil, err
		}
		c.store(date, rows)
		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]gdelt.EnrichedEvent), nil
	}
}

func (c *ResultCache) Invalidate(date civil.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, date)
}

// Len counts live entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *ResultCache) lookup(date civil.Date) ([]gdelt.EnrichedEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[date]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, date)
		return nil, false
	}
	return e.rows, true
}

func (c *ResultCache) store(date civil.Date, rows []gdelt.EnrichedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for d, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, d)
		}
	}
	if rows == nil {
		rows = []gdelt.EnrichedEvent{}
	}
	c.entries[date] = cacheEntry{rows: rows, expiresAt: now.Add(c.ttl)}
}
