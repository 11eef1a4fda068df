package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	edge
//	width
//	height
//	monitor
//	always_on_top
//	debounce_ms
//	reconcile_interval
//	log_level
//	hotkeys.toggle
//	hotkeys.cycle_edge
//	hotkeys.reposition
//	window.title
//	window.class
//	window.background
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "default"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "edge":
		return cfg.Edge, nil
	case "width":
		return cfg.Width, nil
	case "height":
		return cfg.Height, nil
	case "monitor":
		return cfg.Monitor, nil
	case "always_on_top":
		return cfg.AlwaysOnTop, nil
	case "debounce_ms":
		return cfg.DebounceMS, nil
	case "reconcile_interval":
		return cfg.ReconcileInterval, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "metrics_listen":
		return cfg.MetricsListen, nil
	case "hotkeys":
		return cfg.Hotkeys, nil
	case "hotkeys.toggle":
		return cfg.Hotkeys.Toggle, nil
	case "hotkeys.cycle_edge":
		return cfg.Hotkeys.CycleEdge, nil
	case "hotkeys.reposition":
		return cfg.Hotkeys.Reposition, nil
	case "window":
		return cfg.Window, nil
	case "window.title":
		return cfg.Window.Title, nil
	case "window.class":
		return cfg.Window.Class, nil
	case "window.background":
		return cfg.Window.Background, nil
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
