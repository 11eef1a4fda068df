package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/edgedock/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandReposition  CommandType = "REPOSITION"
	CommandSetEdge     CommandType = "SET_EDGE"
	CommandClear       CommandType = "CLEAR"
	CommandSetSize     CommandType = "SET_SIZE"
	CommandCycleEdge   CommandType = "CYCLE_EDGE"
	CommandToggle      CommandType = "TOGGLE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Window          uint32        `json:"window"`
	Edge            string        `json:"edge"`
	Registered      bool          `json:"registered"`
	Committed       platform.Rect `json:"committed"`
	Applied         platform.Rect `json:"applied"`
	MonitorIndex    int           `json:"monitor_index"`
	Monitor         string        `json:"monitor"`
	ScaleX          float64       `json:"scale_x"`
	ScaleY          float64       `json:"scale_y"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	AlwaysOnTop     bool          `json:"always_on_top"`
	Fullscreen      bool          `json:"fullscreen"`
	PendingApply    bool          `json:"pending_apply"`
	PendingSettings bool          `json:"pending_settings"`
	UptimeSeconds   int64         `json:"uptime_seconds"`
	DaemonRunning   bool          `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Primary  bool          `json:"primary"`
	Bounds   platform.Rect `json:"bounds"`
	WorkArea platform.Rect `json:"work_area"`
	ScaleX   float64       `json:"scale_x"`
	ScaleY   float64       `json:"scale_y"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// SetEdgePayload represents the payload for SET_EDGE.
type SetEdgePayload struct {
	Edge string `json:"edge"`
}

// SetSizePayload represents the payload for SET_SIZE. Zero fields are left
// unchanged; with Delta set the values are added to the current size.
type SetSizePayload struct {
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
	Delta  bool `json:"delta,omitempty"`
}

// EdgeData is returned by commands that change the edge.
type EdgeData struct {
	Edge string `json:"edge"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
