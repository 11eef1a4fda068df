package palette

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/edgedock/internal/ipc"
)

// Action identifiers carried by menu items.
const (
	ActionDockLeft   = "dock:left"
	ActionDockTop    = "dock:top"
	ActionDockRight  = "dock:right"
	ActionDockBottom = "dock:bottom"
	ActionUndock     = "undock"
	ActionToggle     = "toggle"
	ActionCycle      = "cycle"
	ActionReposition = "reposition"
	ActionReload     = "reload"
)

// Client is the subset of the daemon client the palette dispatches to.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	SetEdge(edge string) error
	Clear() error
	Toggle() (string, error)
	CycleEdge() (string, error)
	Reposition() error
	Reload() error
}

var _ Client = (*ipc.Client)(nil)

// DockMenu lists the dock actions, marking the current edge active. A nil
// status yields the same list with nothing marked.
func DockMenu(status *ipc.StatusData) []Item {
	edge := ""
	if status != nil {
		edge = status.Edge
	}
	items := []Item{
		{Label: "Dock left", Action: ActionDockLeft, Icon: "go-first", Active: edge == "left"},
		{Label: "Dock top", Action: ActionDockTop, Icon: "go-top", Active: edge == "top"},
		{Label: "Dock right", Action: ActionDockRight, Icon: "go-last", Active: edge == "right"},
		{Label: "Dock bottom", Action: ActionDockBottom, Icon: "go-bottom", Active: edge == "bottom"},
		{Label: "Undock", Action: ActionUndock, Icon: "window-restore", Active: edge == "none"},
		{Label: "Toggle", Action: ActionToggle, Icon: "view-restore"},
		{Label: "Cycle edge", Action: ActionCycle, Icon: "object-rotate-right"},
		{Label: "Reposition", Action: ActionReposition, Icon: "view-refresh"},
		{Label: "Reload config", Action: ActionReload, Icon: "document-revert"},
	}
	return items
}

// Dispatch runs the action on the daemon.
func Dispatch(client Client, action string) error {
	switch action {
	case ActionDockLeft:
		return client.SetEdge("left")
	case ActionDockTop:
		return client.SetEdge("top")
	case ActionDockRight:
		return client.SetEdge("right")
	case ActionDockBottom:
		return client.SetEdge("bottom")
	case ActionUndock:
		return client.Clear()
	case ActionToggle:
		_, err := client.Toggle()
		return err
	case ActionCycle:
		_, err := client.CycleEdge()
		return err
	case ActionReposition:
		return client.Reposition()
	case ActionReload:
		return client.Reload()
	}
	return fmt.Errorf("unknown palette action %q", action)
}

// Run shows the dock menu and dispatches the selection. Cancelling is not an
// error.
func Run(ctx context.Context, l Launcher, client Client) error {
	status, err := client.GetStatus()
	if err != nil {
		return err
	}
	message := fmt.Sprintf("edge: %s  monitor: %d %s", status.Edge, status.MonitorIndex, status.Monitor)
	item, err := l.Show(ctx, "edgedock", DockMenu(status), message)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return Dispatch(client, item.Action)
}
