package patients

import "context"

// Source performs the single preload read for a variant.
type Source interface {
	Fetch(ctx context.Context, tech Technology, key string) (Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, tech Technology, key string) (Entry, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, tech Technology, key string) (Entry, error) {
	return f(ctx, tech, key)
}
