package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/daemon"
	"github.com/1broseidon/edgedock/internal/dock"
	"github.com/1broseidon/edgedock/internal/eventloop"
	"github.com/1broseidon/edgedock/internal/ipc"
	"github.com/1broseidon/edgedock/internal/metrics"
	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/runtimepath"
)

const (
	// shutdownTimeout bounds the final unregister on exit.
	shutdownTimeout = 3 * time.Second
	reloadTimeout   = 5 * time.Second
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/edgedock/config.yaml)")
	window := fs.String("window", "", "Dock an existing top-level window (id in decimal or 0x hex) instead of creating one")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: edgedock daemon [--path PATH] [--window ID]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the docking engine in the foreground.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	adopt, err := parseWindowID(*window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	configPath := *path
	if configPath == "" {
		if configPath, err = config.DefaultConfigPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	load := func() (*config.Config, error) {
		res, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	}

	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("configuration loaded", "path", configPath, "edge", cfg.Edge, "width", cfg.Width, "height", cfg.Height)

	if err := serve(cfg, configPath, load, adopt, level, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config, configPath string, load daemon.ConfigLoader, adopt platform.WindowID, level *slog.LevelVar, logger *slog.Logger) error {
	host, err := platform.OpenHost(platform.HostOptions{
		Title:      cfg.Window.Title,
		Class:      cfg.Window.Class,
		Background: cfg.BackgroundRGB(),
		Window:     adopt,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}
	defer host.Close()
	logger.Info("dock window ready", "window", host.Window())

	// The loop outlives the signal context so shutdown can still unregister.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop := eventloop.New(logger)
	go loop.Run(loopCtx)

	ctrl := dock.NewController(host.Shell(), loop, dock.Options{
		Window:     host.Window(),
		Settings:   daemon.SettingsFromConfig(cfg),
		Quiescence: cfg.Debounce(),
		Logger:     logger,
	})
	loop.Post(ctrl.Start)
	service := dock.NewService(ctrl, loop)

	var state *daemon.StateStore
	if statePath, err := runtimepath.StatePath(); err != nil {
		logger.Warn("state persistence disabled", "error", err)
	} else {
		state = daemon.NewStateStore(statePath)
	}

	d := daemon.New(service, daemon.Options{
		Config: cfg,
		Load:   load,
		State:  state,
		Logger: logger,
	})
	d.OnReload(func(c *config.Config) { level.Set(c.SlogLevel()) })

	m := metrics.New(func() (string, bool, bool) {
		sctx, scancel := context.WithTimeout(context.Background(), time.Second)
		defer scancel()
		st, err := d.Status(sctx)
		if err != nil {
			return "", false, false
		}
		return st.Edge, st.Registered, true
	})

	ipcServer, err := ipc.NewServer(d, logger)
	if err != nil {
		return err
	}
	ipcServer.SetObserver(func(cmd ipc.CommandType, ok bool) { m.ObserveRequest(string(cmd), ok) })
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if every := cfg.ReconcileEvery(); every > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: every,
			Logger:   logger,
		}, service.Monitors, func(ctx context.Context) error {
			m.TopologyChanges.Inc()
			return service.Reposition(ctx)
		})
		go reconciler.Run(ctx)
	}

	if addr := cfg.MetricsListen; addr != "" {
		go func() {
			if err := m.Serve(ctx, addr, logger); err != nil {
				logger.Warn("metrics endpoint disabled", "addr", addr, "error", err)
			}
		}()
	}

	startHotkeys(host, d, cfg, logger)

	reload := func(trigger string) {
		logger.Info("reloading config", "trigger", trigger)
		rctx, rcancel := context.WithTimeout(ctx, reloadTimeout)
		defer rcancel()
		err := d.Reload(rctx)
		m.ObserveReload(trigger, err)
		if err != nil {
			logger.Warn("config reload failed", "error", err)
		}
	}

	go func() {
		if err := config.Watch(ctx, configPath, logger, func() { reload("file") }); err != nil {
			logger.Warn("config watch disabled", "error", err)
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reload("sighup")
			}
		}
	}()

	hostDone := make(chan error, 1)
	go func() { hostDone <- host.Run() }()

	logger.Info("edgedock daemon started")
	select {
	case <-ctx.Done():
		logger.Info("shutting down edgedock daemon")
	case err := <-hostDone:
		if err != nil {
			logger.Error("display event loop stopped", "error", err)
		} else {
			logger.Info("display connection closed")
		}
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := service.Close(closeCtx); err != nil {
		logger.Warn("failed to release dock on shutdown", "error", err)
	}
	return nil
}

// parseWindowID accepts a window id in decimal or 0x-prefixed hex. Empty
// means create a window.
func parseWindowID(s string) (platform.WindowID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowID(v), nil
}
