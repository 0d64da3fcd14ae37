package sourcecache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-variant-patients/cache"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// ErrIncompleteEntry is returned when the wrapped source hands back an entry
// missing one of the three filters. Such entries are never cached.
var ErrIncompleteEntry = errors.New("sourcecache: entry is missing a filter")

const loadMethod = "Load"

var _ patients.Source = (*CachedSource)(nil)

type loadResult struct {
	entry patients.Entry
	err   error
}

type trackedKey struct {
	tech patients.Technology
	key  string
}

// CachedSource decorates a base source with caching functionality.
type CachedSource struct {
	base          patients.Source
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	keyRegistry   *xsync.MapOf[string, trackedKey]
	logger        zerolog.Logger
}

// New creates a CachedSource that wraps base with cacheService.
func New(base patients.Source, cacheService cache.CacheService, keySerializer cache.KeySerializer, logger zerolog.Logger) *CachedSource {
	return &CachedSource{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		keyRegistry:   xsync.NewMapOf[string, trackedKey](),
		logger:        logger.With().Str("component", "sourcecache").Logger(),
	}
}

// Fetch implements patients.Source, serving from the cache when it can.
func (c *CachedSource) Fetch(ctx context.Context, tech patients.Technology, key string) (patients.Entry, error) {
	entry, _, err := c.Load(ctx, tech, key)
	return entry, err
}

// Load returns the entry for a variant, calling the base source on a miss.
// hit reports whether the entry was already cached when Load was called.
func (c *CachedSource) Load(ctx context.Context, tech patients.Technology, key string) (entry patients.Entry, hit bool, err error) {
	cacheKey := c.cacheKey(tech, key)

	if cached, ok := cache.Get[patients.Entry](ctx, c.cache, cacheKey); ok {
		c.logger.Debug().Str("technology", string(tech)).Str("key", key).Msg("cache hit")
		return cached, true, nil
	}

	// The fetch is shared by every concurrent Load of cacheKey, so it runs
	// detached from ctx. A caller that gives up returns early; the fetch
	// still completes, bounded by the source's own timeout.
	done := make(chan loadResult, 1)
	go func() {
		fetched, err := cache.GetOrFetch(context.WithoutCancel(ctx), c.cache, cacheKey, func(ctx context.Context) (patients.Entry, error) {
			fetched, err := c.base.Fetch(ctx, tech, key)
			if err != nil {
				return patients.Entry{}, err
			}
			if !fetched.Complete() {
				return patients.Entry{}, fmt.Errorf("%w: %s %s", ErrIncompleteEntry, tech, key)
			}
			return fetched, nil
		})
		if err == nil {
			c.trackKey(cacheKey, tech, key)
		}
		done <- loadResult{entry: fetched, err: err}
	}()

	select {
	case <-ctx.Done():
		return patients.Entry{}, false, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return patients.Entry{}, false, res.err
		}
		return res.entry, false, nil
	}
}

// Lookup returns the cached slice for a filter without fetching.
func (c *CachedSource) Lookup(tech patients.Technology, key string, filter patients.Filter) (patients.Slice, bool) {
	entry, ok := cache.Get[patients.Entry](context.Background(), c.cache, c.cacheKey(tech, key))
	if !ok {
		return patients.Slice{}, false
	}
	return entry.Slice(filter)
}

// Contains reports whether the variant has been loaded.
func (c *CachedSource) Contains(tech patients.Technology, key string) bool {
	_, ok := c.cache.Get(context.Background(), c.cacheKey(tech, key))
	return ok
}

// Invalidate drops the cached entry for one variant.
func (c *CachedSource) Invalidate(ctx context.Context, tech patients.Technology, key string) error {
	cacheKey := c.cacheKey(tech, key)
	c.keyRegistry.Delete(cacheKey)
	return c.cache.Delete(ctx, cacheKey)
}

// InvalidateTechnology drops every cached entry loaded for tech.
func (c *CachedSource) InvalidateTechnology(ctx context.Context, tech patients.Technology) error {
	prefix := c.keySerializer.SerializeKey(loadMethod, tech) + cache.KeySeparator
	if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("invalidate failed")
		return err
	}

	c.keyRegistry.Range(func(k string, v trackedKey) bool {
		if v.tech == tech {
			c.keyRegistry.Delete(k)
		}
		return true
	})
	return nil
}

// Tracked returns the number of variants loaded through this store.
func (c *CachedSource) Tracked() int {
	return c.keyRegistry.Size()
}

func (c *CachedSource) cacheKey(tech patients.Technology, key string) string {
	return c.keySerializer.SerializeKey(loadMethod, tech, key)
}

// trackKey registers a cache key in the key registry for later invalidation
func (c *CachedSource) trackKey(cacheKey string, tech patients.Technology, key string) {
	c.keyRegistry.Store(cacheKey, trackedKey{tech: tech, key: key})
}
