package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/edgedock/internal/platform"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("failed to get dock status: %w", err)
	}
	return nil, GetStatusOutput{Status: *status}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to list monitors: %w", err)
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleSetEdge(_ context.Context, _ *mcpsdk.CallToolRequest, args SetEdgeInput) (*mcpsdk.CallToolResult, EdgeOutput, error) {
	if strings.TrimSpace(args.Edge) == "" {
		return nil, EdgeOutput{}, fmt.Errorf("edge is required")
	}
	edge, err := platform.ParseEdge(args.Edge)
	if err != nil {
		return nil, EdgeOutput{}, err
	}
	if err := s.client.SetEdge(edge.String()); err != nil {
		return nil, EdgeOutput{}, fmt.Errorf("failed to set edge: %w", err)
	}
	s.logger.Info("mcp: edge set", "edge", edge)
	return nil, EdgeOutput{Edge: edge.String()}, nil
}

func (s *Server) handleUndock(_ context.Context, _ *mcpsdk.CallToolRequest, _ UndockInput) (*mcpsdk.CallToolResult, EdgeOutput, error) {
	if err := s.client.Clear(); err != nil {
		return nil, EdgeOutput{}, fmt.Errorf("failed to undock: %w", err)
	}
	s.logger.Info("mcp: undocked")
	return nil, EdgeOutput{Edge: platform.EdgeNone.String()}, nil
}

func (s *Server) handleCycleEdge(_ context.Context, _ *mcpsdk.CallToolRequest, _ CycleEdgeInput) (*mcpsdk.CallToolResult, EdgeOutput, error) {
	edge, err := s.client.CycleEdge()
	if err != nil {
		return nil, EdgeOutput{}, fmt.Errorf("failed to cycle edge: %w", err)
	}
	s.logger.Info("mcp: edge cycled", "edge", edge)
	return nil, EdgeOutput{Edge: edge}, nil
}

func (s *Server) handleToggleDock(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleDockInput) (*mcpsdk.CallToolResult, EdgeOutput, error) {
	edge, err := s.client.Toggle()
	if err != nil {
		return nil, EdgeOutput{}, fmt.Errorf("failed to toggle dock: %w", err)
	}
	s.logger.Info("mcp: dock toggled", "edge", edge)
	return nil, EdgeOutput{Edge: edge}, nil
}

func (s *Server) handleSetSize(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSizeInput) (*mcpsdk.CallToolResult, SetSizeOutput, error) {
	if args.Width == 0 && args.Height == 0 {
		return nil, SetSizeOutput{}, fmt.Errorf("width or height is required")
	}

	var err error
	if args.Delta {
		err = s.client.Grow(args.Width, args.Height)
	} else {
		if args.Width < 0 || args.Height < 0 {
			return nil, SetSizeOutput{}, fmt.Errorf("width and height must be positive")
		}
		err = s.client.SetSize(args.Width, args.Height)
	}
	if err != nil {
		return nil, SetSizeOutput{}, fmt.Errorf("failed to set size: %w", err)
	}

	status, err := s.client.GetStatus()
	if err != nil {
		return nil, SetSizeOutput{}, fmt.Errorf("size requested but status unavailable: %w", err)
	}
	return nil, SetSizeOutput{
		Width:   status.Width,
		Height:  status.Height,
		Pending: status.PendingSettings,
	}, nil
}

func (s *Server) handleReposition(_ context.Context, _ *mcpsdk.CallToolRequest, _ RepositionInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.client.Reposition(); err != nil {
		return nil, AckOutput{}, fmt.Errorf("failed to reposition: %w", err)
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.client.Reload(); err != nil {
		return nil, AckOutput{}, fmt.Errorf("failed to reload config: %w", err)
	}
	return nil, AckOutput{OK: true}, nil
}
