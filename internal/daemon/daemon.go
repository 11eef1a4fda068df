// Package daemon glues the docking engine to its collaborators: the IPC
// server, the config file and the persisted state.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/dock"
	"github.com/1broseidon/edgedock/internal/geometry"
	"github.com/1broseidon/edgedock/internal/ipc"
	"github.com/1broseidon/edgedock/internal/monitor"
	"github.com/1broseidon/edgedock/internal/platform"
)

// ConfigLoader loads the effective configuration.
type ConfigLoader func() (*config.Config, error)

// Options configure a Daemon.
type Options struct {
	Config *config.Config
	// Load is used by Reload. Nil disables reloading.
	Load   ConfigLoader
	State  *StateStore
	Logger *slog.Logger
}

// Daemon implements ipc.Engine over a dock.Service.
type Daemon struct {
	service *dock.Service
	load    ConfigLoader
	state   *StateStore
	logger  *slog.Logger
	started time.Time

	mu       sync.Mutex
	cfg      *config.Config
	lastEdge platform.Edge
	onReload []func(*config.Config)
}

var _ ipc.Engine = (*Daemon)(nil)

// New creates a daemon around service. The Toggle target is restored from
// the state store, falling back to the configured edge.
func New(service *dock.Service, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	d := &Daemon{
		service:  service,
		load:     opts.Load,
		state:    opts.State,
		logger:   logger,
		started:  time.Now(),
		cfg:      cfg,
		lastEdge: cfg.DockEdge(),
	}
	if d.state != nil {
		st, err := d.state.Load()
		if err != nil {
			logger.Warn("failed to load state", "error", err)
		} else if edge := st.Edge(); edge != platform.EdgeNone {
			d.lastEdge = edge
		}
	}
	return d
}

// OnReload registers fn to run with the new config after a successful reload.
func (d *Daemon) OnReload(fn func(*config.Config)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onReload = append(d.onReload, fn)
}

// Config returns the config currently in effect.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// SettingsFromConfig maps the config onto engine settings.
func SettingsFromConfig(cfg *config.Config) dock.Settings {
	return dock.Settings{
		Edge:         cfg.DockEdge(),
		Size:         geometry.Size{Width: cfg.Width, Height: cfg.Height},
		MonitorIndex: cfg.Monitor,
		AlwaysOnTop:  cfg.AlwaysOnTop,
	}
}

func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	st, err := d.service.Status(ctx)
	if err != nil {
		return ipc.StatusData{}, err
	}
	return ipc.StatusData{
		Window:          uint32(st.Window),
		Edge:            st.Edge.String(),
		Registered:      st.Registered,
		Committed:       st.Committed,
		Applied:         st.Applied,
		MonitorIndex:    st.ResolvedMonitor,
		Monitor:         st.Monitor,
		ScaleX:          st.ScaleX,
		ScaleY:          st.ScaleY,
		Width:           st.Size.Width,
		Height:          st.Size.Height,
		AlwaysOnTop:     st.AlwaysOnTop,
		Fullscreen:      st.Fullscreen,
		PendingApply:    st.PendingApply,
		PendingSettings: st.PendingSettings,
		UptimeSeconds:   int64(time.Since(d.started).Seconds()),
		DaemonRunning:   true,
	}, nil
}

func (d *Daemon) Monitors(ctx context.Context) ([]ipc.MonitorInfo, error) {
	list, err := d.service.Monitors(ctx)
	if err != nil {
		return nil, err
	}
	return MonitorInfos(list), nil
}

// MonitorInfos converts descriptors to their wire form.
func MonitorInfos(list []monitor.Descriptor) []ipc.MonitorInfo {
	out := make([]ipc.MonitorInfo, 0, len(list))
	for _, m := range list {
		out = append(out, ipc.MonitorInfo{
			Index:    m.Index,
			Name:     m.Name,
			Primary:  m.Primary,
			Bounds:   m.Bounds,
			WorkArea: m.WorkArea,
			ScaleX:   m.ScaleX,
			ScaleY:   m.ScaleY,
		})
	}
	return out
}

func (d *Daemon) Reposition(ctx context.Context) error {
	return d.service.Reposition(ctx)
}

func (d *Daemon) SetEdge(ctx context.Context, edge platform.Edge) error {
	if err := d.service.SetAppBar(ctx, edge); err != nil {
		return err
	}
	d.remember(edge)
	return nil
}

func (d *Daemon) Clear(ctx context.Context) error {
	return d.service.ClearAppBar(ctx)
}

func (d *Daemon) CycleEdge(ctx context.Context) (platform.Edge, error) {
	edge, err := d.service.CycleEdge(ctx)
	if err != nil {
		return platform.EdgeNone, err
	}
	d.remember(edge)
	return edge, nil
}

// Toggle floats a docked window, or docks a floating one to the last edge.
func (d *Daemon) Toggle(ctx context.Context) (platform.Edge, error) {
	edge, err := d.service.Toggle(ctx, d.fallbackEdge())
	if err != nil {
		return platform.EdgeNone, err
	}
	d.remember(edge)
	return edge, nil
}

// Resize changes the logical dock size through the settings debouncer.
func (d *Daemon) Resize(ctx context.Context, req ipc.SetSizePayload) error {
	if !req.Delta && (req.Width < 0 || req.Height < 0) {
		return fmt.Errorf("size must be positive")
	}
	return d.service.Update(ctx, func(s *dock.Settings) {
		s.Size = resized(s.Size, req)
	})
}

func resized(cur geometry.Size, req ipc.SetSizePayload) geometry.Size {
	next := cur
	if req.Delta {
		next.Width += req.Width
		next.Height += req.Height
	} else {
		if req.Width > 0 {
			next.Width = req.Width
		}
		if req.Height > 0 {
			next.Height = req.Height
		}
	}
	next.Width = max(next.Width, 1)
	next.Height = max(next.Height, 1)
	return next
}

// Reload re-reads the config and applies it immediately.
func (d *Daemon) Reload(ctx context.Context) error {
	if d.load == nil {
		return fmt.Errorf("reload not supported")
	}
	cfg, err := d.load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := d.service.SetQuiescence(ctx, cfg.Debounce()); err != nil {
		return err
	}
	settings := SettingsFromConfig(cfg)
	if err := d.service.Replace(ctx, settings); err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = cfg
	hooks := append([]func(*config.Config){}, d.onReload...)
	d.mu.Unlock()
	d.remember(settings.Edge)

	d.logger.Info("config reloaded",
		"edge", cfg.Edge,
		"width", cfg.Width,
		"height", cfg.Height,
		"monitor", cfg.Monitor)
	for _, fn := range hooks {
		fn(cfg)
	}
	return nil
}

func (d *Daemon) fallbackEdge() platform.Edge {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastEdge != platform.EdgeNone {
		return d.lastEdge
	}
	if edge := d.cfg.DockEdge(); edge != platform.EdgeNone {
		return edge
	}
	edge, _ := platform.ParseEdge(config.DefaultEdge)
	return edge
}

// remember records edge as the Toggle target and persists it.
func (d *Daemon) remember(edge platform.Edge) {
	if edge == platform.EdgeNone {
		return
	}
	d.mu.Lock()
	changed := d.lastEdge != edge
	d.lastEdge = edge
	d.mu.Unlock()
	if !changed || d.state == nil {
		return
	}
	if err := d.state.Save(State{LastEdge: edge.String(), UpdatedAt: time.Now()}); err != nil {
		d.logger.Warn("failed to persist state", "error", err)
	}
}
