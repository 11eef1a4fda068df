package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/edgedock/internal/ipc"
)

// DaemonClient is the subset of ipc.Client the TUI drives.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	Grow(dw, dh int) error
	CycleEdge() (string, error)
	Toggle() (string, error)
	Reposition() error
	Reload() error
}

var _ DaemonClient = (*ipc.Client)(nil)

// Run starts the TUI. An empty configPath uses the default location.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m := newModel(configPath, ipc.NewClient())
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
