package multiblog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SharedCache is a post cache shared between server instances. PostCache
// consults it before fetching from the content source and fills it after.
type SharedCache interface {
	GetPosts(ctx context.Context, sourceID string) ([]Post, bool, error)
	SetPosts(ctx context.Context, sourceID string, posts []Post, ttl time.Duration) error
	DeletePosts(ctx context.Context, sourceID string) error
}

// PostCache is an in-memory cache of normalized posts per content source.
// Entries are served for at most ttl after they were fetched; concurrent
// misses on the same source share one fetch. Cached slices are shared and
// must not be modified by callers.
type PostCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	source  ContentSource
	shared  SharedCache
	loads   singleflight.Group
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

type cacheEntry struct {
	posts   []Post
	fetched time.Time
}

// NewPostCache creates a PostCache backed by the given content source. A
// non-positive ttl disables caching.
func NewPostCache(src ContentSource, ttl time.Duration, logger *zap.Logger) *PostCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		source:  src,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *PostCache) lookup(sourceID string) ([]Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sourceID]
	if !ok || c.now().Sub(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.posts, true
}

func (c *PostCache) store(sourceID string, posts []Post) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[sourceID] = cacheEntry{posts: posts, fetched: c.now()}
	c.mu.Unlock()
}

// Posts returns the normalized posts of a content source, fetching them when
// the cached copy is missing or older than the staleness window.
func (c *PostCache) Posts(ctx context.Context, sourceID string) ([]Post, error) {
	if posts, ok := c.lookup(sourceID); ok {
		c.metrics.cacheLookup(true)
		return posts, nil
	}
	c.metrics.cacheLookup(false)
	v, err, _ := c.loads.Do(sourceID, func() (any, error) {
		if posts, ok := c.lookup(sourceID); ok {
			return posts, nil
		}
		if posts, ok := c.fromShared(ctx, sourceID); ok {
			c.store(sourceID, posts)
			return posts, nil
		}
		return c.load(ctx, sourceID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Post), nil
}

// Fetch bypasses both caches and returns freshly normalized posts. The
// result replaces the cached copy.
func (c *PostCache) Fetch(ctx context.Context, sourceID string) ([]Post, error) {
	return c.load(ctx, sourceID)
}

func (c *PostCache) fromShared(ctx context.Context, sourceID string) ([]Post, bool) {
	if c.shared == nil || c.ttl <= 0 {
		return nil, false
	}
	posts, ok, err := c.shared.GetPosts(ctx, sourceID)
	if err != nil {
		c.logger.Warn("shared cache read failed", zap.String("source", sourceID), zap.Error(err))
		return nil, false
	}
	return posts, ok
}

func (c *PostCache) load(ctx context.Context, sourceID string) ([]Post, error) {
	start := time.Now()
	docs, err := c.source.ListDocuments(ctx, sourceID)
	c.metrics.fetched(err, time.Since(start))
	if err != nil {
		return nil, err
	}
	posts, dropped := normalize(docs)
	if dropped > 0 {
		c.metrics.dropped(sourceID, dropped)
		c.logger.Debug("dropped documents without title or route",
			zap.String("source", sourceID),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(posts)))
	}
	c.store(sourceID, posts)
	if c.shared != nil && c.ttl > 0 {
		if err := c.shared.SetPosts(ctx, sourceID, posts, c.ttl); err != nil {
			c.logger.Warn("shared cache write failed", zap.String("source", sourceID), zap.Error(err))
		}
	}
	return posts, nil
}

// Invalidate drops the cached posts of sourceID, or of every source when
// sourceID is empty. A single source is also removed from the shared cache;
// clearing everything leaves shared entries to expire on their own.
func (c *PostCache) Invalidate(ctx context.Context, sourceID string) {
	c.mu.Lock()
	if sourceID == "" {
		c.entries = make(map[string]cacheEntry)
	} else {
		delete(c.entries, sourceID)
	}
	c.mu.Unlock()
	if sourceID == "" || c.shared == nil {
		return
	}
	if err := c.shared.DeletePosts(ctx, sourceID); err != nil {
		c.logger.Warn("shared cache delete failed", zap.String("source", sourceID), zap.Error(err))
	}
}
