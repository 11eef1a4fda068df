package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawHotkeys struct {
	Toggle     *string `yaml:"toggle"`
	CycleEdge  *string `yaml:"cycle_edge"`
	Reposition *string `yaml:"reposition"`
}

type RawWindow struct {
	Title      *string `yaml:"title"`
	Class      *string `yaml:"class"`
	Background *string `yaml:"background"`
}

// RawConfig mirrors the YAML file. Nil fields were not set.
type RawConfig struct {
	Include           IncludeList `yaml:"include"`
	Edge              *string     `yaml:"edge"`
	Width             *int        `yaml:"width"`
	Height            *int        `yaml:"height"`
	Monitor           *int        `yaml:"monitor"`
	AlwaysOnTop       *bool       `yaml:"always_on_top"`
	DebounceMS        *int        `yaml:"debounce_ms"`
	ReconcileInterval *string     `yaml:"reconcile_interval"`
	LogLevel          *string     `yaml:"log_level"`
	MetricsListen     *string     `yaml:"metrics_listen"`
	Hotkeys           *RawHotkeys `yaml:"hotkeys"`
	Window            *RawWindow  `yaml:"window"`
}

// merge overlays o on top of r; set fields in o win.
func (r RawConfig) merge(o RawConfig) RawConfig {
	out := r
	out.Include = nil
	if o.Edge != nil {
		out.Edge = o.Edge
	}
	if o.Width != nil {
		out.Width = o.Width
	}
	if o.Height != nil {
		out.Height = o.Height
	}
	if o.Monitor != nil {
		out.Monitor = o.Monitor
	}
	if o.AlwaysOnTop != nil {
		out.AlwaysOnTop = o.AlwaysOnTop
	}
	if o.DebounceMS != nil {
		out.DebounceMS = o.DebounceMS
	}
	if o.ReconcileInterval != nil {
		out.ReconcileInterval = o.ReconcileInterval
	}
	if o.LogLevel != nil {
		out.LogLevel = o.LogLevel
	}
	if o.MetricsListen != nil {
		out.MetricsListen = o.MetricsListen
	}
	if o.Hotkeys != nil {
		merged := RawHotkeys{}
		if out.Hotkeys != nil {
			merged = *out.Hotkeys
		}
		if o.Hotkeys.Toggle != nil {
			merged.Toggle = o.Hotkeys.Toggle
		}
		if o.Hotkeys.CycleEdge != nil {
			merged.CycleEdge = o.Hotkeys.CycleEdge
		}
		if o.Hotkeys.Reposition != nil {
			merged.Reposition = o.Hotkeys.Reposition
		}
		out.Hotkeys = &merged
	}
	if o.Window != nil {
		merged := RawWindow{}
		if out.Window != nil {
			merged = *out.Window
		}
		if o.Window.Title != nil {
			merged.Title = o.Window.Title
		}
		if o.Window.Class != nil {
			merged.Class = o.Window.Class
		}
		if o.Window.Background != nil {
			merged.Background = o.Window.Background
		}
		out.Window = &merged
	}
	return out
}
