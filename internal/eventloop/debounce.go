package eventloop

import (
	"sync"
	"time"
)

// DefaultQuiescence is the debounce window for bursts of settings input.
const DefaultQuiescence = 500 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through
// RealAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer coalesces bursts of Trigger calls into one action that runs on
// the loop after the quiescence window. Every Trigger supersedes the
// previous one; a timer that fires after being superseded is ignored, so
// cancel-and-reschedule is a single step as far as the loop is concerned.
type Debouncer struct {
	loop      *Loop
	window    time.Duration
	afterFunc AfterFunc

	mu    sync.Mutex
	gen   uint64
	timer Timer
}

// NewDebouncer creates a debouncer. A non-positive window uses
// DefaultQuiescence; a nil afterFunc uses RealAfterFunc.
func NewDebouncer(loop *Loop, window time.Duration, afterFunc AfterFunc) *Debouncer {
	if window <= 0 {
		window = DefaultQuiescence
	}
	if afterFunc == nil {
		afterFunc = RealAfterFunc
	}
	return &Debouncer{loop: loop, window: window, afterFunc: afterFunc}
}

// Trigger cancels any pending action and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.afterFunc(d.window, func() {
		d.loop.Post(func() {
			if !d.current(gen) {
				return
			}
			fn()
		})
	})
}

// Cancel drops any pending action.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether an action is scheduled and not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// SetWindow changes the quiescence window for subsequent triggers.
func (d *Debouncer) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultQuiescence
	}
	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
}

func (d *Debouncer) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return false
	}
	d.timer = nil
	return true
}
