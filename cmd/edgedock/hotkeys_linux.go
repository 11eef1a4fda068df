//go:build linux

package main

import (
	"log/slog"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/daemon"
	"github.com/1broseidon/edgedock/internal/hotkeys"
	"github.com/1broseidon/edgedock/internal/platform"
)

// startHotkeys grabs the configured key sequences on the X root window and
// re-grabs them whenever the config reloads.
func startHotkeys(host platform.Host, d *daemon.Daemon, cfg *config.Config, logger *slog.Logger) {
	shell, ok := host.Shell().(*platform.X11Shell)
	if !ok {
		return
	}
	handler := hotkeys.NewHandler(shell.Connection(), d, logger)
	apply := func(c *config.Config) {
		if err := handler.Apply(c.Hotkeys); err != nil {
			logger.Warn("some hotkeys were not registered", "bound", len(handler.Bound()), "error", err)
		}
	}
	apply(cfg)
	d.OnReload(apply)
}
