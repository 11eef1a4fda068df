package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/edgedock/internal/ipc"
)

const (
	ServerName    = "edgedock"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of ipc.Client the tools use.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetEdge(edge string) error
	Clear() error
	CycleEdge() (string, error)
	Toggle() (string, error)
	SetSize(width, height int) error
	Grow(dw, dh int) error
	Reposition() error
	Reload() error
}

var _ DaemonClient = (*ipc.Client)(nil)

// Server is the MCP server exposing dock control to agents.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards to the daemon.
func NewServer(client DaemonClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_dock_status",
		Description: "Report the dock's edge, reserved rectangle, applied window rectangle, monitor, DPI scale and whether a resize or reposition is still pending.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List attached monitors, primary first, with bounds, work area and DPI scale. The index is what the monitor config key selects.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_dock_edge",
		Description: "Dock the window to a screen edge (left, top, right, bottom) and reserve that strip from other windows. Use none to release the reservation and float the window.",
	}, s.handleSetEdge)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "undock",
		Description: "Release the screen reservation and leave the window floating where it was last placed.",
	}, s.handleUndock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_dock_edge",
		Description: "Move the dock to the next edge in left, top, right, bottom order. Returns the new edge.",
	}, s.handleCycleEdge)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_dock",
		Description: "Float a docked window, or dock a floating window back to the last edge it used. Returns the resulting edge.",
	}, s.handleToggleDock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_dock_size",
		Description: "Change the dock's logical thickness. Width applies to left/right docks and height to top/bottom docks. Changes are debounced by the daemon, so bursts settle into one reposition.",
	}, s.handleSetSize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reposition_dock",
		Description: "Recompute the dock rectangle against the current monitors and renegotiate the reservation.",
	}, s.handleReposition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Make the daemon re-read its config file and apply it immediately.",
	}, s.handleReloadConfig)
}
