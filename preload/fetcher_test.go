package preload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/goliatone/go-variant-patients/pkg/testsupport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderFunc func(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error)

func (f loaderFunc) Load(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error) {
	return f(ctx, tech, key)
}

func instantLoader(hit bool, err error) loaderFunc {
	return func(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error) {
		if err != nil {
			return patients.Entry{}, false, err
		}
		return testsupport.Entry(tech, key, nil, nil), hit, nil
	}
}

func TestPreload_PadsFastCacheHit(t *testing.T) {
	f := New(instantLoader(true, nil), Config{MinLoadingTime: 80 * time.Millisecond}, clock.New(), zerolog.Nop())

	start := time.Now()
	out, err := f.Preload(context.Background(), patients.ShortRead, "k")
	require.NoError(t, err)

	assert.True(t, out.CacheHit)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestPreload_PadsFailure(t *testing.T) {
	boom := &patients.NetworkError{Technology: patients.ShortRead, Key: "k", Status: 500}
	f := New(instantLoader(false, boom), Config{MinLoadingTime: 80 * time.Millisecond}, clock.New(), zerolog.Nop())

	start := time.Now()
	_, err := f.Preload(context.Background(), patients.ShortRead, "k")

	assert.ErrorIs(t, err, boom)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestPreload_SlowLoadIsNotPadded(t *testing.T) {
	mock := clock.NewMock()
	slow := loaderFunc(func(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error) {
		mock.Add(700 * time.Millisecond)
		return testsupport.Entry(tech, key, nil, nil), false, nil
	})
	f := New(slow, DefaultConfig(), mock, zerolog.Nop())

	out, err := f.Preload(context.Background(), patients.LongRead, "chr1:1")
	require.NoError(t, err)

	assert.False(t, out.CacheHit)
	assert.Equal(t, 700*time.Millisecond, out.Elapsed)
}

func TestPreload_WaitsOnMockClock(t *testing.T) {
	mock := clock.NewMock()
	f := New(instantLoader(false, nil), DefaultConfig(), mock, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := f.Preload(context.Background(), patients.ShortRead, "k")
		done <- err
	}()

	var advanced time.Duration
	for advanced < time.Second {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.GreaterOrEqual(t, advanced, DefaultMinLoadingTime)
			return
		default:
		}
		time.Sleep(time.Millisecond)
		mock.Add(50 * time.Millisecond)
		advanced += 50 * time.Millisecond
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("preload never finished")
	}
}

func TestPreload_ContextCancelledWhilePadding(t *testing.T) {
	f := New(instantLoader(true, nil), Config{MinLoadingTime: time.Hour}, clock.New(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.Preload(ctx, patients.ShortRead, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreload_ValidatesInput(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error) {
		calls.Add(1)
		return patients.Entry{}, false, nil
	})
	f := New(loader, Config{}, clock.New(), zerolog.Nop())

	_, err := f.Preload(context.Background(), patients.ShortRead, "")
	assert.ErrorIs(t, err, patients.ErrEmptyKey)

	_, err = f.Preload(context.Background(), patients.Technology("NGS"), "k")
	assert.ErrorIs(t, err, patients.ErrUnknownTechnology)

	assert.Zero(t, calls.Load())
}

func TestWarm(t *testing.T) {
	var (
		mu      sync.Mutex
		seen    []string
		running atomic.Int32
		peak    atomic.Int32
	)
	loader := loaderFunc(func(ctx context.Context, tech patients.Technology, key string) (patients.Entry, bool, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		seen = append(seen, key)
		mu.Unlock()
		if key == "bad" {
			return patients.Entry{}, false, errors.New("boom")
		}
		return testsupport.Entry(tech, key, nil, nil), false, nil
	})
	f := New(loader, Config{WarmConcurrency: 2}, clock.New(), zerolog.Nop())

	loaded, err := f.Warm(context.Background(), patients.ShortRead, "a", "b", "bad", "c", "")

	assert.Equal(t, 3, loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warm bad")
	assert.ErrorIs(t, err, patients.ErrEmptyKey)
	assert.Len(t, seen, 4)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
