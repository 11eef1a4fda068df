package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/edgedock/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

func decodeEdge(resp *Response) (string, error) {
	var data EdgeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse edge data: %w", err)
	}
	return data.Edge, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.send(CommandGetMonitors, nil)
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &monitors, nil
}

// Reposition asks the daemon to recompute against the current monitors.
func (c *Client) Reposition() error {
	_, err := c.send(CommandReposition, nil)
	return err
}

// SetEdge docks to edge ("none" floats the window).
func (c *Client) SetEdge(edge string) error {
	_, err := c.send(CommandSetEdge, SetEdgePayload{Edge: edge})
	return err
}

// Clear releases the reservation and leaves the window floating.
func (c *Client) Clear() error {
	_, err := c.send(CommandClear, nil)
	return err
}

// SetSize changes the logical dock size; zero values keep the current one.
func (c *Client) SetSize(width, height int) error {
	_, err := c.send(CommandSetSize, SetSizePayload{Width: width, Height: height})
	return err
}

// Grow adds dw/dh to the current size. Bursts are debounced by the daemon.
func (c *Client) Grow(dw, dh int) error {
	_, err := c.send(CommandSetSize, SetSizePayload{Width: dw, Height: dh, Delta: true})
	return err
}

// CycleEdge moves the dock to the next edge and returns it.
func (c *Client) CycleEdge() (string, error) {
	resp, err := c.send(CommandCycleEdge, nil)
	if err != nil {
		return "", err
	}
	return decodeEdge(resp)
}

// Toggle docks or floats the window and returns the resulting edge.
func (c *Client) Toggle() (string, error) {
	resp, err := c.send(CommandToggle, nil)
	if err != nil {
		return "", err
	}
	return decodeEdge(resp)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
