package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/edgedock/internal/platform"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEdge              = "right"
	DefaultWidth             = 320
	DefaultHeight            = 48
	DefaultDebounceMS        = 500
	DefaultReconcileInterval = "2s"
	DefaultLogLevel          = "info"
)

// HotkeyConfig binds global hotkeys. Empty strings disable a binding.
type HotkeyConfig struct {
	// Toggle docks to the last edge or floats the window.
	Toggle string `yaml:"toggle"`
	// CycleEdge moves the dock to the next edge clockwise.
	CycleEdge string `yaml:"cycle_edge"`
	// Reposition forces a recompute against the current monitors.
	Reposition string `yaml:"reposition"`
}

// WindowConfig describes the dock window the daemon creates.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Class      string `yaml:"class"`
	Background string `yaml:"background"`
}

// Config is the effective configuration after defaults and includes.
type Config struct {
	// Edge is left, top, right, bottom or none (floating).
	Edge string `yaml:"edge"`
	// Width is the logical thickness of a left/right dock.
	Width int `yaml:"width"`
	// Height is the logical thickness of a top/bottom dock.
	Height int `yaml:"height"`
	// Monitor is the index into the primary-first monitor list.
	Monitor           int    `yaml:"monitor"`
	AlwaysOnTop       bool   `yaml:"always_on_top"`
	DebounceMS        int    `yaml:"debounce_ms"`
	ReconcileInterval string `yaml:"reconcile_interval"`
	LogLevel          string `yaml:"log_level"`
	// MetricsListen is a host:port serving Prometheus metrics. Empty disables.
	MetricsListen string       `yaml:"metrics_listen"`
	Hotkeys       HotkeyConfig `yaml:"hotkeys"`
	Window        WindowConfig `yaml:"window"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Edge:              DefaultEdge,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Monitor:           0,
		AlwaysOnTop:       true,
		DebounceMS:        DefaultDebounceMS,
		ReconcileInterval: DefaultReconcileInterval,
		LogLevel:          DefaultLogLevel,
		Hotkeys: HotkeyConfig{
			Toggle:     "Mod4-Shift-d",
			CycleEdge:  "Mod4-Shift-e",
			Reposition: "",
		},
		Window: WindowConfig{
			Title:      "edgedock",
			Class:      "edgedock",
			Background: "#1e1e2e",
		},
	}
}

// DockEdge parses Edge. Validate guarantees it succeeds.
func (c *Config) DockEdge() platform.Edge {
	edge, err := platform.ParseEdge(c.Edge)
	if err != nil {
		return platform.EdgeNone
	}
	return edge
}

// Debounce returns the settings quiescence window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ReconcileEvery returns the topology polling interval; zero disables it.
func (c *Config) ReconcileEvery() time.Duration {
	d, err := time.ParseDuration(c.ReconcileInterval)
	if err != nil {
		return 0
	}
	return d
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// BackgroundRGB parses Window.Background as #RRGGBB.
func (c *Config) BackgroundRGB() uint32 {
	v, err := parseColor(c.Window.Background)
	if err != nil {
		return 0
	}
	return v
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := platform.ParseEdge(c.Edge); err != nil {
		return &ValidationError{Path: "edge", Err: fmt.Errorf("edge must be one of: left, top, right, bottom, none")}
	}
	if c.Width < 1 {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be >= 1")}
	}
	if c.Height < 1 {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be >= 1")}
	}
	if c.Monitor < 0 {
		return &ValidationError{Path: "monitor", Err: fmt.Errorf("monitor must be >= 0")}
	}
	if c.DebounceMS < 0 {
		return &ValidationError{Path: "debounce_ms", Err: fmt.Errorf("debounce_ms must be >= 0")}
	}
	if strings.TrimSpace(c.ReconcileInterval) != "" {
		d, err := time.ParseDuration(c.ReconcileInterval)
		if err != nil {
			return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("invalid duration: %w", err)}
		}
		if d < 0 {
			return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if addr := strings.TrimSpace(c.MetricsListen); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return &ValidationError{Path: "metrics_listen", Err: fmt.Errorf("metrics_listen must be host:port: %w", err)}
		}
	}
	if c.Window.Background != "" {
		if _, err := parseColor(c.Window.Background); err != nil {
			return &ValidationError{Path: "window.background", Err: err}
		}
	}
	return nil
}

func parseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must be #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be #RRGGBB", s)
	}
	return uint32(v), nil
}
