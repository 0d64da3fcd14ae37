// Package preload runs the single batched fetch behind a popup and keeps the
// loading indicator up for a minimum time so fast responses do not flicker.
package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Defaults used by DefaultConfig.
const (
	DefaultMinLoadingTime  = 500 * time.Millisecond
	DefaultWarmConcurrency = 4
)

// Loader is the cache store the fetcher fills.
type Loader interface {
	Load(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error)
}

// Config tunes a Fetcher.
type Config struct {
	// MinLoadingTime pads every preload, hit or miss, success or failure.
	// Zero disables padding.
	MinLoadingTime  time.Duration
	WarmConcurrency int
}

// DefaultConfig returns a 500ms minimum loading time and four warm workers.
func DefaultConfig() Config {
	return Config{
		MinLoadingTime:  DefaultMinLoadingTime,
		WarmConcurrency: DefaultWarmConcurrency,
	}
}

// Outcome describes a finished preload.
type Outcome struct {
	Entry    patients.Entry
	CacheHit bool
	// Elapsed is the time spent loading, before any padding.
	Elapsed time.Duration
}

// Fetcher preloads variants into a Loader.
type Fetcher struct {
	loader Loader
	cfg    Config
	clock  clock.Clock
	logger zerolog.Logger
}

// New returns a Fetcher over loader. A nil clk uses the wall clock.
func New(loader Loader, cfg Config, clk clock.Clock, logger zerolog.Logger) *Fetcher {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.WarmConcurrency <= 0 {
		cfg.WarmConcurrency = DefaultWarmConcurrency
	}
	return &Fetcher{
		loader: loader,
		cfg:    cfg,
		clock:  clk,
		logger: logger.With().Str("component", "preload").Logger(),
	}
}

// Preload makes sure the variant is cached. It returns no earlier than
// MinLoadingTime after it was called unless ctx ends first, in which case
// ctx.Err() is returned.
func (f *Fetcher) Preload(ctx context.Context, tech patients.Technology, key string) (Outcome, error) {
	if err := validate(tech, key); err != nil {
		return Outcome{}, err
	}

	start := f.clock.Now()
	entry, hit, err := f.loader.Load(ctx, tech, key)
	elapsed := f.clock.Since(start)

	log := f.logger.With().Str("technology", string(tech)).Str("key", key).Logger()
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("preload failed")
	} else {
		log.Debug().Bool("cache_hit", hit).Dur("elapsed", elapsed).Msg("preload done")
	}

	if waitErr := f.pad(ctx, start); waitErr != nil {
		return Outcome{}, waitErr
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Entry: entry, CacheHit: hit, Elapsed: elapsed}, nil
}

// Warm loads several variants without padding, at most WarmConcurrency at a
// time. Every key is attempted; the returned error joins the failures.
func (f *Fetcher) Warm(ctx context.Context, tech patients.Technology, keys ...string) (int, error) {
	var (
		mu     sync.Mutex
		loaded int
		errs   []error
	)

	g := new(errgroup.Group)
	g.SetLimit(f.cfg.WarmConcurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			err := validate(tech, key)
			if err == nil {
				_, _, err = f.loader.Load(ctx, tech, key)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("warm %s: %w", key, err))
				return nil
			}
			loaded++
			return nil
		})
	}
	_ = g.Wait()

	return loaded, errors.Join(errs...)
}

func (f *Fetcher) pad(ctx context.Context, start time.Time) error {
	remaining := f.cfg.MinLoadingTime - f.clock.Since(start)
	if remaining <= 0 {
		return nil
	}

	timer := f.clock.Timer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validate(tech patients.Technology, key string) error {
	if !tech.Valid() {
		return fmt.Errorf("%w: %q", patients.ErrUnknownTechnology, tech)
	}
	if key == "" {
		return patients.ErrEmptyKey
	}
	return nil
}
