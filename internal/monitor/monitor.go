// Package monitor enumerates attached displays and resolves a configured
// monitor index to a descriptor.
package monitor

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/edgedock/internal/platform"
)

// Descriptor is an immutable snapshot of one monitor. It is valid for a
// single placement operation only.
type Descriptor struct {
	// Index is the position in the primary-first list.
	Index    int
	Handle   platform.MonitorHandle
	Name     string
	Bounds   platform.Rect
	WorkArea platform.Rect
	ScaleX   float64
	ScaleY   float64
	Primary  bool
}

// Lister is the subset of platform.Shell used for enumeration.
type Lister interface {
	Monitors() ([]platform.MonitorInfo, error)
}

// Enumerator lists monitors with the primary monitor first.
type Enumerator struct {
	shell  Lister
	dpi    *DPIResolver
	logger *slog.Logger
}

// NewEnumerator creates an enumerator. The shell must satisfy both Lister
// and DPIQuerier; platform.Shell does.
func NewEnumerator(shell interface {
	Lister
	DPIQuerier
}, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enumerator{
		shell:  shell,
		dpi:    NewDPIResolver(shell, logger),
		logger: logger,
	}
}

// List returns every attached monitor, primary first, the rest in the
// order the OS enumerated them.
func (e *Enumerator) List() ([]Descriptor, error) {
	infos, err := e.shell.Monitors()
	if err != nil {
		return nil, fmt.Errorf("enumerate monitors: %w", err)
	}

	out := make([]Descriptor, 0, len(infos))
	primary := -1
	for i, info := range infos {
		if info.Primary && primary < 0 {
			primary = i
		}
	}
	// Without a flagged primary the first enumerated monitor stands in.
	if primary < 0 && len(infos) > 0 {
		primary = 0
	}
	if primary >= 0 {
		out = append(out, e.describe(infos[primary], true))
	}
	for i, info := range infos {
		if i == primary {
			continue
		}
		out = append(out, e.describe(info, false))
	}
	for i := range out {
		out[i].Index = i
	}
	return out, nil
}

// Resolve returns the monitor at index, or the primary monitor when index is
// out of range. It only fails when no monitor is attached at all.
func (e *Enumerator) Resolve(index int) (Descriptor, error) {
	monitors, err := e.List()
	if err != nil {
		return Descriptor{}, err
	}
	if len(monitors) == 0 {
		return Descriptor{}, fmt.Errorf("no monitors found")
	}
	if index < 0 || index >= len(monitors) {
		e.logger.Debug("monitor index out of range, using primary", "index", index, "count", len(monitors))
		return monitors[0], nil
	}
	return monitors[index], nil
}

func (e *Enumerator) describe(info platform.MonitorInfo, primary bool) Descriptor {
	sx, sy := e.dpi.ScaleFor(info.Handle)
	return Descriptor{
		Handle:   info.Handle,
		Name:     info.Name,
		Bounds:   info.Bounds,
		WorkArea: info.Work.Normalize(),
		ScaleX:   sx,
		ScaleY:   sy,
		Primary:  primary,
	}
}
