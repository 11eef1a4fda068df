package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/edgedock/internal/config"
)

// SettingsTab is the sub-model for editing the config file.
type SettingsTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fEdge        string
	fWidth       string
	fHeight      string
	fMonitor     string
	fAlwaysOnTop bool
	fDebounce    string
	fToggle      string
	fCycleEdge   string
	fReposition  string
}

// NewSettingsTab creates a SettingsTab from the loaded config.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// SetConfig updates the config reference.
func (s *SettingsTab) SetConfig(cfg *config.Config) {
	s.cfg = cfg
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	return s.updateDisplay(msg)
}

func (s SettingsTab) updateDisplay(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

func (s *SettingsTab) startEditing() {
	cfg := s.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s.fEdge = cfg.DockEdge().String()
	s.fWidth = strconv.Itoa(cfg.Width)
	s.fHeight = strconv.Itoa(cfg.Height)
	s.fMonitor = strconv.Itoa(cfg.Monitor)
	s.fAlwaysOnTop = cfg.AlwaysOnTop
	s.fDebounce = strconv.Itoa(cfg.DebounceMS)
	s.fToggle = cfg.Hotkeys.Toggle
	s.fCycleEdge = cfg.Hotkeys.CycleEdge
	s.fReposition = cfg.Hotkeys.Reposition

	edgeOpts := []huh.Option[string]{
		huh.NewOption("left", "left"),
		huh.NewOption("top", "top"),
		huh.NewOption("right", "right"),
		huh.NewOption("bottom", "bottom"),
		huh.NewOption("none (floating)", "none"),
	}

	w := max(s.width-4, 40)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("edge").
				Title("Edge").
				Description("Screen edge to reserve").
				Options(edgeOpts...).
				Value(&s.fEdge),

			huh.NewInput().
				Key("width").
				Title("Width").
				Description("Thickness of a left/right dock at 96 DPI").
				Validate(positiveInt).
				Value(&s.fWidth),

			huh.NewInput().
				Key("height").
				Title("Height").
				Description("Thickness of a top/bottom dock at 96 DPI").
				Validate(positiveInt).
				Value(&s.fHeight),

			huh.NewInput().
				Key("monitor").
				Title("Monitor").
				Description("Index in the primary-first monitor list").
				Validate(nonNegativeInt).
				Value(&s.fMonitor),

			huh.NewConfirm().
				Key("always_on_top").
				Title("Always on top").
				Value(&s.fAlwaysOnTop),

			huh.NewInput().
				Key("debounce_ms").
				Title("Debounce (ms)").
				Description("Quiet period before size changes apply").
				Validate(positiveInt).
				Value(&s.fDebounce),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("toggle").
				Title("Hotkey: Toggle").
				Description("X11 keybinding, empty to disable").
				Value(&s.fToggle),
			huh.NewInput().
				Key("cycle_edge").
				Title("Hotkey: Cycle edge").
				Value(&s.fCycleEdge),
			huh.NewInput().
				Key("reposition").
				Title("Hotkey: Reposition").
				Value(&s.fReposition),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func nonNegativeInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("must be zero or more")
	}
	return nil
}

func (s *SettingsTab) applyForm() {
	if s.cfg == nil {
		return
	}

	if s.fEdge != "" {
		s.cfg.Edge = s.fEdge
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s.fWidth)); err == nil && v > 0 {
		s.cfg.Width = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s.fHeight)); err == nil && v > 0 {
		s.cfg.Height = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s.fMonitor)); err == nil && v >= 0 {
		s.cfg.Monitor = v
	}
	s.cfg.AlwaysOnTop = s.fAlwaysOnTop
	if v, err := strconv.Atoi(strings.TrimSpace(s.fDebounce)); err == nil && v > 0 {
		s.cfg.DebounceMS = v
	}
	s.cfg.Hotkeys.Toggle = strings.TrimSpace(s.fToggle)
	s.cfg.Hotkeys.CycleEdge = strings.TrimSpace(s.fCycleEdge)
	s.cfg.Hotkeys.Reposition = strings.TrimSpace(s.fReposition)
}

// View renders the settings tab.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		return s.form.View()
	}

	cfg := s.cfg
	if cfg == nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("config failed to load")
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	row := func(k string, v any) string { return label.Render(k) + value.Render(fmt.Sprint(v)) }
	orNone := func(v string) string {
		if v == "" {
			return "(none)"
		}
		return v
	}

	lines := []string{
		row("Edge", cfg.DockEdge()),
		row("Width", cfg.Width),
		row("Height", cfg.Height),
		row("Monitor", cfg.Monitor),
		row("Always on top", cfg.AlwaysOnTop),
		row("Debounce (ms)", cfg.DebounceMS),
		row("Reconcile interval", cfg.ReconcileInterval),
		"",
		row("Toggle", orNone(cfg.Hotkeys.Toggle)),
		row("Cycle edge", orNone(cfg.Hotkeys.CycleEdge)),
		row("Reposition", orNone(cfg.Hotkeys.Reposition)),
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("e: edit  ctrl+s: save"),
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
}
