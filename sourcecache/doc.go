// Package sourcecache decorates a patients.Source with a read-through cache.
//
// One cache value holds the whole Entry for a (technology, key) pair, so the
// three zygosity slices of a variant are installed in a single step and a
// reader can never see "all" without "hetero" and "homo".
//
// # Basic Usage
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	store := sourcecache.New(httpClient, svc, cache.NewDefaultKeySerializer(), logger)
//
//	entry, hit, err := store.Load(ctx, patients.ShortRead, "1_100_A_G")
//	slice, ok := store.Lookup(patients.ShortRead, "1_100_A_G", patients.FilterHetero)
//
// Concurrent Loads for the same variant share one call to the wrapped source.
// Failed loads are not cached.
//
// # Invalidation
//
// Nothing is invalidated automatically. Invalidate and InvalidateTechnology
// exist for hosts that know the underlying variant data has changed; the
// popup itself never calls them. InvalidateTechnology deletes by key prefix,
// so entries loaded before the store was created are dropped too.
package sourcecache
