package cache

import (
	"time"

	"github.com/goliatone/go-variant-patients/internal/cacheinfra"
)

// Config holds the cache settings callers may tune. Patient entries are kept
// for a whole page session and never refreshed behind the popup's back, so
// early refresh and missing-record storage are not exposed and stay off.
// Capacity counts variants across all shards; an EvictionInterval of zero
// keeps sturdyc's default.
//
// sturdyc evicts per shard, so a shard holds about Capacity/NumShards
// variants. A session that opens more than that, or outlives TTL, can lose
// an entry while its popup is showing; the popup preloads it again on the
// next render.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	internal := cacheinfra.DefaultConfig()
	return Config{
		Capacity:           internal.Capacity,
		NumShards:          internal.NumShards,
		TTL:                internal.TTL,
		EvictionPercentage: internal.EvictionPercentage,
		EvictionInterval:   internal.EvictionInterval,
	}
}

// WithTTL returns a copy of c with the given TTL.
func (c Config) WithTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService builds the sturdyc-backed CacheService.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         nil,
		MissingRecordStorage: false,
		EvictionInterval:     c.EvictionInterval,
	}
}
