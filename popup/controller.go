package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/goliatone/go-variant-patients/preload"
	"github.com/goliatone/go-variant-patients/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Errors returned by controller actions.
var (
	ErrNotReady    = errors.New("popup: not ready")
	ErrInvalidPage = errors.New("popup: page must be at least 1")
)

const genericErrorMessage = "Error loading patient data."

// Preloader fills the cache for a variant.
type Preloader interface {
	Preload(ctx context.Context, tech patients.Technology, key string) (preload.Outcome, error)
}

// Config tunes a Controller. A non-positive DebounceDelay falls back to
// DefaultDebounceDelay.
type Config struct {
	DebounceDelay time.Duration
}

// DefaultConfig returns the 300ms search debounce.
func DefaultConfig() Config {
	return Config{DebounceDelay: DefaultDebounceDelay}
}

// Controller owns the popup state of one page session.
type Controller struct {
	preloader Preloader
	store     view.Lookuper
	sink      RenderSink
	debouncer *Debouncer
	logger    zerolog.Logger

	mu        sync.Mutex
	state     State
	phase     Phase
	openCtx   context.Context
	token     uuid.UUID
	cancel    context.CancelFunc
	searchSeq uint64

	// published is what State and Phase read, so a sink may call them.
	published atomic.Pointer[snapshot]

	inflight sync.WaitGroup
}

type snapshot struct {
	state State
	phase Phase
}

// NewController returns a closed popup. Preloads go through preloader and
// pages are read from store; clk drives the search debounce.
func NewController(preloader Preloader, store view.Lookuper, sink RenderSink, cfg Config, clk clock.Clock, logger zerolog.Logger) *Controller {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	c := &Controller{
		preloader: preloader,
		store:     store,
		sink:      sink,
		debouncer: NewDebouncer(clk, cfg.DebounceDelay),
		logger:    logger.With().Str("component", "popup").Logger(),
		state:     DefaultState(),
		phase:     PhaseClosed,
	}
	c.publishLocked()
	return c
}

// Open shows the popup for a variant. The loading placeholder is rendered
// before Open returns; the preload runs in the background and its result is
// rendered only if the popup still shows this variant when it completes.
// Opening while another variant is loading abandons that request.
func (c *Controller) Open(ctx context.Context, tech patients.Technology, key string) error {
	if !tech.Valid() {
		return fmt.Errorf("%w: %q", patients.ErrUnknownTechnology, tech)
	}
	key = patients.NormalizeKey(tech, key)
	if key == "" {
		return patients.ErrEmptyKey
	}

	c.mu.Lock()
	c.abandonLocked()
	c.state = State{Key: key, Technology: tech, Filter: patients.FilterAll, Page: 1}
	c.openCtx = ctx
	token := c.startLocked(1)
	c.mu.Unlock()

	c.logger.Debug().Str("technology", string(tech)).Str("key", key).Str("request", token.String()).Msg("open")
	return nil
}

// startLocked shows the loading placeholder and preloads the current variant
// in the background, rendering page once it is cached.
func (c *Controller) startLocked(page int) uuid.UUID {
	reqCtx, cancel := context.WithCancel(c.openCtx)
	token := uuid.New()
	c.phase = PhaseLoading
	c.token = token
	c.cancel = cancel
	c.publishLocked()
	c.sink.ShowLoading()

	c.inflight.Add(1)
	go c.runPreload(reqCtx, token, c.state.Technology, c.state.Key, page)
	return token
}

func (c *Controller) runPreload(ctx context.Context, token uuid.UUID, tech patients.Technology, key string, page int) {
	defer c.inflight.Done()

	out, err := c.preloader.Preload(ctx, tech, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.currentLocked(token, tech, key) {
		c.logger.Debug().Str("technology", string(tech)).Str("key", key).Str("request", token.String()).Msg("dropping stale preload")
		return
	}
	c.cancel()
	c.cancel = nil

	if err != nil {
		c.failLocked(userMessage(err))
		return
	}

	c.logger.Debug().Str("key", key).Bool("cache_hit", out.CacheHit).Dur("elapsed", out.Elapsed).Msg("ready")
	c.phase = PhaseReady
	if !c.renderLocked(page) {
		c.logger.Error().Str("technology", string(tech)).Str("key", key).Msg("preloaded entry missing from store")
		c.failLocked(genericErrorMessage)
	}
}

func (c *Controller) failLocked(message string) {
	c.phase = PhaseError
	c.publishLocked()
	c.sink.ShowError(message)
}

// Search records the input and re-runs the view from page 1 once typing has
// been idle for the debounce delay. Input while Loading is kept and applied
// to the first render. It is ignored while the popup is closed.
func (c *Controller) Search(raw string) {
	term := view.NormalizeSearch(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open() {
		return
	}
	c.state.SearchTerm = term
	c.publishLocked()
	c.searchSeq++
	seq, token := c.searchSeq, c.token
	c.debouncer.Trigger(func() { c.onSearchIdle(seq, token) })
}

func (c *Controller) onSearchIdle(seq uint64, token uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Open() || token != c.token || seq != c.searchSeq || c.phase != PhaseReady {
		return
	}
	c.logger.Debug().Str("key", c.state.Key).Str("search", c.state.SearchTerm).Msg("search")
	c.showLocked(1)
}

// ToggleFilter selects kind, or falls back to "all" when kind is already
// active. The search is cleared and the view returns to page 1.
func (c *Controller) ToggleFilter(kind patients.Filter) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", patients.ErrUnknownFilter, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseReady {
		return ErrNotReady
	}
	c.searchSeq++
	c.debouncer.Stop()
	c.state.Filter = view.ToggleFilter(c.state.Filter, kind)
	c.state.SearchTerm = ""
	c.showLocked(1)
	return nil
}

// GoToPage shows page n of the current view.
func (c *Controller) GoToPage(n int) error {
	if n < 1 {
		return ErrInvalidPage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseReady {
		return ErrNotReady
	}
	c.showLocked(n)
	return nil
}

// Close hides the popup and resets its state. Cached variants are kept.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abandonLocked()
	c.state.Reset()
	c.phase = PhaseClosed
	c.openCtx = nil
	c.publishLocked()
}

// State returns a copy of the popup state. It is safe to call from a
// RenderSink method.
func (c *Controller) State() State {
	return c.published.Load().state
}

// Phase returns the lifecycle phase. It is safe to call from a RenderSink
// method.
func (c *Controller) Phase() Phase {
	return c.published.Load().phase
}

// Wait blocks until every preload started so far has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// abandonLocked cancels the outstanding request and pending search.
func (c *Controller) abandonLocked() {
	c.debouncer.Stop()
	c.searchSeq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.token = uuid.Nil
}

func (c *Controller) currentLocked(token uuid.UUID, tech patients.Technology, key string) bool {
	return token == c.token && c.state.Key == key && c.state.Technology == tech
}

// showLocked renders page of the current view. An entry the cache has
// evicted since the popup became Ready is preloaded again first.
func (c *Controller) showLocked(page int) {
	if c.renderLocked(page) {
		return
	}
	c.logger.Info().Str("technology", string(c.state.Technology)).Str("key", c.state.Key).Msg("entry evicted, reloading")
	c.abandonLocked()
	c.startLocked(page)
}

func (c *Controller) renderLocked(page int) bool {
	rendered, ok := view.Reconcile(c.store, view.Request{
		Technology: c.state.Technology,
		Key:        c.state.Key,
		Filter:     c.state.Filter,
		SearchTerm: c.state.SearchTerm,
		Page:       page,
	})
	if !ok {
		return false
	}

	c.state.Page = rendered.CurrentPage
	c.publishLocked()
	c.sink.RenderPage(rendered)
	c.sink.RenderPaginationControls(rendered.CurrentPage, rendered.TotalPages)
	c.sink.UpdateShownCount(len(rendered.Patients))
	return true
}

func (c *Controller) publishLocked() {
	c.published.Store(&snapshot{state: c.state, phase: c.phase})
}

func userMessage(err error) string {
	var netErr *patients.NetworkError
	if errors.As(err, &netErr) {
		return netErr.UserMessage()
	}
	return genericErrorMessage
}
