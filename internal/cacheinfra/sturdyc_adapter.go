package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the sturdyc settings. Capacity, NumShards, TTL and
// EvictionPercentage go straight to sturdyc.New; the rest become options.
type Config struct {
	// Capacity is the number of variant entries kept across all shards.
	// Each shard evicts on its own once it holds Capacity/NumShards.
	Capacity  int
	NumShards int

	// TTL should outlive a page session: entries are never refreshed in the
	// background while a popup may still be showing them.
	TTL time.Duration

	// EvictionPercentage of entries is dropped when a shard is full (1-100).
	EvictionPercentage int

	// EarlyRefresh, when set, turns on sturdyc's background refreshes.
	EarlyRefresh *EarlyRefreshConfig

	MissingRecordStorage bool

	// EvictionInterval of zero keeps sturdyc's default sweep.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config sized for one browsing session.
func DefaultConfig() Config {
	return Config{
		Capacity:             5000,
		NumShards:            16,
		TTL:                  12 * time.Hour,
		EvictionPercentage:   10,
		EarlyRefresh:         nil,
		MissingRecordStorage: false,
		EvictionInterval:     0,
	}
}

// ToSturdycOptions returns the options part of c.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.MaxAsyncRefreshTime < c.EarlyRefresh.MinAsyncRefreshTime {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must not be below MinAsyncRefreshTime"}
		}
		if c.EarlyRefresh.SyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.SyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh.RetryBaseDelay", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycService is the CacheService behind every patient store.
type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates cfg and builds the sturdyc client.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key or runs fetchFn and stores its
// result. Concurrent calls for the same key share one fetchFn invocation.
// A failed fetch leaves the cache untouched.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}
	return s.client.GetOrFetch(ctx, key, sturdyc.FetchFn[any](fetchFn))
}

// Get looks up key without fetching.
func (s *sturdycService) Get(ctx context.Context, key string) (any, bool) {
	return s.client.Get(key)
}

// Set stores value under key, replacing what was there.
func (s *sturdycService) Set(ctx context.Context, key string, value any) error {
	s.client.Set(key, value)
	return nil
}

// Delete removes a single entry from the cache.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size reports the number of cached entries.
func (s *sturdycService) Size() int {
	return s.client.Size()
}
