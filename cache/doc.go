// Package cache provides the caching contract and key serialization used by
// the patient store.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: a read-through cache storing whole values per key
//   - KeySerializer: builds stable cache keys from a method name and arguments
//
// The default CacheService is backed by sturdyc (see NewCacheService). It
// coalesces concurrent fetches for the same key, so a burst of loads for one
// variant results in a single call to the source of truth.
//
// # Basic Usage
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("Load", patients.ShortRead, "1_100_A_G")
//
//	entry, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (patients.Entry, error) {
//		return source.Fetch(ctx, patients.ShortRead, "1_100_A_G")
//	})
//
// Get performs the same typed lookup without ever fetching.
//
// # Keys
//
// Keys are the method name followed by each argument, joined with
// KeySeparator. Colons and backslashes inside arguments are escaped, so
// prefix matching on "Load::SR" only ever hits short-read entries.
//
// # Errors
//
// Fetch errors are returned to the caller and never stored.
package cache
