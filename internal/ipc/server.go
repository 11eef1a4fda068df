package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/runtimepath"
)

// requestTimeout bounds how long a request may wait on the engine loop.
const requestTimeout = 5 * time.Second

// Engine is the daemon surface the server drives.
type Engine interface {
	Status(ctx context.Context) (StatusData, error)
	Monitors(ctx context.Context) ([]MonitorInfo, error)
	Reposition(ctx context.Context) error
	SetEdge(ctx context.Context, edge platform.Edge) error
	Clear(ctx context.Context) error
	CycleEdge(ctx context.Context) (platform.Edge, error)
	Toggle(ctx context.Context) (platform.Edge, error)
	Resize(ctx context.Context, req SetSizePayload) error
	Reload(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	logger       *slog.Logger
	startTime    time.Time
	observe      func(cmd CommandType, ok bool)
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server on the default socket path.
func NewServer(engine Engine, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, engine, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     engine,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// SetObserver installs a callback run after every handled request. Call it
// before Start.
func (s *Server) SetObserver(fn func(cmd CommandType, ok bool)) {
	s.observe = fn
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)
	if s.observe != nil {
		s.observe(req.Command, resp.Status == "OK")
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleSimple(s.engine.Reload(ctx), "reload config")
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetMonitors:
		return s.handleGetMonitors(ctx)
	case CommandReposition:
		return s.handleSimple(s.engine.Reposition(ctx), "reposition")
	case CommandSetEdge:
		return s.handleSetEdge(ctx, req.Payload)
	case CommandClear:
		return s.handleSimple(s.engine.Clear(ctx), "clear appbar")
	case CommandSetSize:
		return s.handleSetSize(ctx, req.Payload)
	case CommandCycleEdge:
		edge, err := s.engine.CycleEdge(ctx)
		return s.edgeResponse(edge, err, "cycle edge")
	case CommandToggle:
		edge, err := s.engine.Toggle(ctx)
		return s.edgeResponse(edge, err, "toggle")
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleSimple(err error, what string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", what, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) edgeResponse(edge platform.Edge, err error, what string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", what, err))
	}
	resp, _ := NewOKResponse(EdgeData{Edge: edge.String()})
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.engine.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors(ctx context.Context) *Response {
	monitors, err := s.engine.Monitors(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	resp, _ := NewOKResponse(MonitorsData{Monitors: monitors})
	return resp
}

func (s *Server) handleSetEdge(ctx context.Context, payload json.RawMessage) *Response {
	var req SetEdgePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set edge payload: %v", err))
	}
	edge, err := platform.ParseEdge(req.Edge)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if edge == platform.EdgeNone {
		return s.handleSimple(s.engine.Clear(ctx), "clear appbar")
	}
	return s.edgeResponse(edge, s.engine.SetEdge(ctx, edge), "set edge")
}

func (s *Server) handleSetSize(ctx context.Context, payload json.RawMessage) *Response {
	var req SetSizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set size payload: %v", err))
	}
	if !req.Delta && (req.Width < 0 || req.Height < 0) {
		return NewErrorResponse("width and height must be >= 0")
	}
	if req.Width == 0 && req.Height == 0 {
		return NewErrorResponse("width or height is required")
	}
	return s.handleSimple(s.engine.Resize(ctx, req), "resize")
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
