package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/edgedock/internal/monitor"
)

// MonitorLister returns the current monitor topology.
type MonitorLister func(ctx context.Context) ([]monitor.Descriptor, error)

// RepositionFunc recomputes the dock placement.
type RepositionFunc func(ctx context.Context) error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler polls the monitor topology and repositions the dock when it
// drifts. Shell notifications cover most changes; the poll catches the ones
// a window manager does not announce, such as a resolution switch that
// leaves the work area untouched.
type Reconciler struct {
	interval    time.Duration
	listMonitor MonitorLister
	reposition  RepositionFunc
	logger      *slog.Logger

	last string
	seen bool
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, list MonitorLister, reposition RepositionFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval:    interval,
		listMonitor: list,
		reposition:  reposition,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	// Seed the fingerprint so the first tick does not count as drift.
	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// ReconcileNow performs an immediate reconciliation and reports whether the
// topology had changed since the previous pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) bool {
	return r.reconcile(ctx)
}

func (r *Reconciler) reconcile(ctx context.Context) (changed bool) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
			changed = false
		}
	}()

	monitors, err := r.listMonitor(ctx)
	if err != nil {
		r.logger.Warn("reconciler: failed to list monitors", "error", err)
		return false
	}

	fp := Fingerprint(monitors)
	if !r.seen {
		r.seen = true
		r.last = fp
		return false
	}
	if fp == r.last {
		return false
	}

	r.logger.Info("reconciler: monitor topology changed", "monitors", len(monitors))
	r.last = fp
	if err := r.reposition(ctx); err != nil {
		r.logger.Warn("reconciler: reposition failed", "error", err)
	}
	return true
}

// Fingerprint summarizes the parts of a topology that affect placement.
func Fingerprint(monitors []monitor.Descriptor) string {
	var b strings.Builder
	for _, m := range monitors {
		fmt.Fprintf(&b, "%d:%x:%s:%s:%.3f:%.3f;",
			m.Index, uintptr(m.Handle), m.Bounds, m.WorkArea, m.ScaleX, m.ScaleY)
	}
	return b.String()
}
