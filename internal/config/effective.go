package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Edge != nil {
		cfg.Edge = *raw.Edge
	}
	cfg.Width = derefInt(raw.Width, cfg.Width)
	cfg.Height = derefInt(raw.Height, cfg.Height)
	cfg.Monitor = derefInt(raw.Monitor, cfg.Monitor)
	if raw.AlwaysOnTop != nil {
		cfg.AlwaysOnTop = *raw.AlwaysOnTop
	}
	cfg.DebounceMS = derefInt(raw.DebounceMS, cfg.DebounceMS)
	if raw.ReconcileInterval != nil {
		cfg.ReconcileInterval = *raw.ReconcileInterval
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.MetricsListen != nil {
		cfg.MetricsListen = *raw.MetricsListen
	}

	if h := raw.Hotkeys; h != nil {
		if h.Toggle != nil {
			cfg.Hotkeys.Toggle = *h.Toggle
		}
		if h.CycleEdge != nil {
			cfg.Hotkeys.CycleEdge = *h.CycleEdge
		}
		if h.Reposition != nil {
			cfg.Hotkeys.Reposition = *h.Reposition
		}
	}
	if w := raw.Window; w != nil {
		if w.Title != nil {
			cfg.Window.Title = *w.Title
		}
		if w.Class != nil {
			cfg.Window.Class = *w.Class
		}
		if w.Background != nil {
			cfg.Window.Background = *w.Background
		}
	}
	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
