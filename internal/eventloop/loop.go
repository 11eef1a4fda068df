// Package eventloop provides the single-threaded message loop every
// docking state transition runs on.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// Loop runs posted closures on one goroutine. A pass first drains every
// posted task (including tasks posted while draining), then runs the idle
// tasks queued up to that point, including those queued by the posted work.
// Idle tasks queued by an idle task run in the next pass.
type Loop struct {
	mu      sync.Mutex
	posted  []func()
	idle    []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
	logger  *slog.Logger
}

// New creates a loop. Call Run to start processing, or RunPending from a
// test goroutine.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues fn to run on the loop. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
}

// Idle queues fn to run after the current batch of posted work drains.
// Safe from any goroutine.
func (l *Loop) Idle(fn func()) {
	l.mu.Lock()
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
	l.signal()
}

// Do posts fn and blocks until it has run. It must not be called from the
// loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.mu.Unlock()

	ran := make(chan struct{})
	l.Post(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.done)
	}()

	l.logger.Debug("event loop started")
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return
		case <-l.wake:
		}
	}
}

// RunPending executes passes until no posted or idle work remains. It
// reports whether anything ran.
func (l *Loop) RunPending() bool {
	ran := false
	for l.pass() {
		ran = true
	}
	return ran
}

func (l *Loop) pass() bool {
	ran := false
	for {
		l.mu.Lock()
		batch := l.posted
		l.posted = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			break
		}
		ran = true
		for _, fn := range batch {
			l.run(fn)
		}
	}

	l.mu.Lock()
	idle := l.idle
	l.idle = nil
	l.mu.Unlock()
	for _, fn := range idle {
		ran = true
		l.run(fn)
	}
	return ran
}

func (l *Loop) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()
	fn()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
