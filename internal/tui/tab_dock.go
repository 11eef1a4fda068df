package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/edgedock/internal/ipc"
)

const (
	// sliderStep is the logical pixel change per key press.
	sliderStep = 8
	// sliderMax is the thickness shown as a full bar.
	sliderMax = 800
)

// DockTab shows live docking state and a thickness slider. Slider presses
// are sent as deltas; the daemon debounces bursts into one reposition.
type DockTab struct {
	client DaemonClient
	keys   keyMap
	bar    progress.Model

	status *ipc.StatusData
	// target is the thickness the user dialed in, shown until the daemon
	// reports a settled status.
	target  int
	lastErr string

	width  int
	height int
}

// NewDockTab creates the dock tab.
func NewDockTab(client DaemonClient, keys keyMap) DockTab {
	return DockTab{
		client: client,
		keys:   keys,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// SetStatus records a fresh daemon status. A nil status means the daemon is
// unreachable.
func (d *DockTab) SetStatus(st *ipc.StatusData) {
	d.status = st
	if st != nil && !st.PendingSettings {
		d.target = 0
	}
}

// horizontal reports whether the slider controls height.
func (d DockTab) horizontal() bool {
	return d.status != nil && (d.status.Edge == "top" || d.status.Edge == "bottom")
}

// Thickness is the size along the docked axis currently displayed.
func (d DockTab) Thickness() int {
	if d.target > 0 {
		return d.target
	}
	if d.status == nil {
		return 0
	}
	if d.horizontal() {
		return d.status.Height
	}
	return d.status.Width
}

// Update handles input for the dock tab.
func (d DockTab) Update(msg tea.Msg) (DockTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Shrink):
			d.nudge(-sliderStep)
		case key.Matches(msg, d.keys.Grow):
			d.nudge(sliderStep)
		case key.Matches(msg, d.keys.CycleEdge):
			d.run(func() error {
				edge, err := d.client.CycleEdge()
				if err == nil && d.status != nil {
					d.status.Edge = edge
				}
				return err
			})
		case key.Matches(msg, d.keys.Toggle):
			d.run(func() error {
				edge, err := d.client.Toggle()
				if err == nil && d.status != nil {
					d.status.Edge = edge
				}
				return err
			})
		case key.Matches(msg, d.keys.Reposition):
			d.run(d.client.Reposition)
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.bar.Width = max(min(msg.Width-20, 60), 10)
	}
	return d, nil
}

func (d *DockTab) nudge(delta int) {
	if d.status == nil {
		d.lastErr = "daemon not running"
		return
	}
	current := d.Thickness()
	next := max(current+delta, 1)
	if next == current {
		return
	}
	d.run(func() error {
		var err error
		if d.horizontal() {
			err = d.client.Grow(0, next-current)
		} else {
			err = d.client.Grow(next-current, 0)
		}
		if err == nil {
			d.target = next
		}
		return err
	})
}

func (d *DockTab) run(fn func() error) {
	if err := fn(); err != nil {
		d.lastErr = err.Error()
		return
	}
	d.lastErr = ""
}

// View renders the dock tab.
func (d DockTab) View() string {
	if d.status == nil {
		style := lipgloss.NewStyle().
			Width(d.width).
			Height(d.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("start the daemon with: edgedock daemon")
	}

	st := d.status
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	row := func(k, v string) string { return label.Render(k) + value.Render(v) }

	axis := "width"
	if d.horizontal() {
		axis = "height"
	}
	thickness := d.Thickness()
	suffix := ""
	if d.target > 0 || st.PendingSettings {
		suffix = "  (pending)"
	}

	lines := []string{
		row("Edge", st.Edge),
		row("Registered", fmt.Sprintf("%v", st.Registered)),
		row("Monitor", fmt.Sprintf("%d %s", st.MonitorIndex, st.Monitor)),
		row("Scale", fmt.Sprintf("%.2f x %.2f", st.ScaleX, st.ScaleY)),
		row("Reserved", st.Committed.String()),
		row("Window", st.Applied.String()),
		row("Always on top", fmt.Sprintf("%v", st.AlwaysOnTop)),
		"",
		row(strings.ToUpper(axis[:1])+axis[1:], fmt.Sprintf("%d px%s", thickness, suffix)),
		d.bar.ViewAs(min(float64(thickness)/sliderMax, 1)),
	}
	if d.lastErr != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: "+d.lastErr))
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
}
