package popup

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultDebounceDelay is the idle time after the last keystroke before a
// search runs.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer runs only the last function handed to Trigger, once delay has
// passed without another Trigger.
type Debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer *clock.Timer
}

// NewDebouncer returns a Debouncer on clk, the wall clock when nil.
func NewDebouncer(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger cancels the pending function, if any, and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, fn)
}

// Stop cancels the pending function. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
