//go:build !linux

package main

import (
	"log/slog"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/daemon"
	"github.com/1broseidon/edgedock/internal/platform"
)

func startHotkeys(platform.Host, *daemon.Daemon, *config.Config, *slog.Logger) {}
