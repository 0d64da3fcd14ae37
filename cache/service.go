package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value does not hold the type
// the caller asked for.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through operations the patient store needs.
// Values are stored whole: a Set or a completed fetch replaces the entire value
// under a key, never part of it.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error)
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

// Get is the typed lookup counterpart of GetOrFetch. It never fetches.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	var zero T
	result, ok := service.Get(ctx, key)
	if !ok {
		return zero, false
	}
	typed, ok := result.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
