package mcp

import "github.com/1broseidon/edgedock/internal/ipc"

// GetStatusInput is the input for the get_dock_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_dock_status tool.
type GetStatusOutput struct {
	Status ipc.StatusData `json:"status"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// SetEdgeInput is the input for the set_dock_edge tool.
type SetEdgeInput struct {
	Edge string `json:"edge" jsonschema:"required,Screen edge to dock to: left, top, right, bottom, or none to float the window"`
}

// EdgeOutput reports the edge after an edge-changing tool.
type EdgeOutput struct {
	Edge string `json:"edge"`
}

// UndockInput is the input for the undock tool.
type UndockInput struct{}

// CycleEdgeInput is the input for the cycle_dock_edge tool.
type CycleEdgeInput struct{}

// ToggleDockInput is the input for the toggle_dock tool.
type ToggleDockInput struct{}

// SetSizeInput is the input for the set_dock_size tool.
type SetSizeInput struct {
	Width  int  `json:"width,omitempty" jsonschema:"Logical width of a left/right dock in pixels at 96 DPI. Zero keeps the current value."`
	Height int  `json:"height,omitempty" jsonschema:"Logical height of a top/bottom dock in pixels at 96 DPI. Zero keeps the current value."`
	Delta  bool `json:"delta,omitempty" jsonschema:"When true, width and height are added to the current size instead of replacing it."`
}

// SetSizeOutput is the output for the set_dock_size tool.
type SetSizeOutput struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Pending is true while the change waits out the debounce window.
	Pending bool `json:"pending"`
}

// RepositionInput is the input for the reposition_dock tool.
type RepositionInput struct{}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// AckOutput is returned by tools with no other result.
type AckOutput struct {
	OK bool `json:"ok"`
}
