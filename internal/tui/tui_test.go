package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/ipc"
)

type fakeClient struct {
	grows   [][2]int
	reloads int
	edge    string
	err     error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Edge: "right", Width: 320, Height: 48}, nil
}

func (f *fakeClient) Grow(dw, dh int) error {
	if f.err != nil {
		return f.err
	}
	f.grows = append(f.grows, [2]int{dw, dh})
	return nil
}

func (f *fakeClient) CycleEdge() (string, error) { return f.edge, f.err }
func (f *fakeClient) Toggle() (string, error)    { return f.edge, f.err }
func (f *fakeClient) Reposition() error          { return f.err }

func (f *fakeClient) Reload() error {
	f.reloads++
	return f.err
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDockTab_SliderSendsDeltasAlongDockedAxis(t *testing.T) {
	fc := &fakeClient{}
	d := NewDockTab(fc, defaultKeyMap())
	d.SetStatus(&ipc.StatusData{Edge: "right", Width: 320, Height: 48, PendingSettings: false})

	d, _ = d.Update(keyMsg("right"))
	d, _ = d.Update(keyMsg("right"))
	d, _ = d.Update(keyMsg("left"))

	want := [][2]int{{sliderStep, 0}, {sliderStep, 0}, {-sliderStep, 0}}
	if len(fc.grows) != len(want) {
		t.Fatalf("grows = %v, want %v", fc.grows, want)
	}
	for i := range want {
		if fc.grows[i] != want[i] {
			t.Fatalf("grows = %v, want %v", fc.grows, want)
		}
	}
	if got := d.Thickness(); got != 320+sliderStep {
		t.Fatalf("thickness = %d, want %d", got, 320+sliderStep)
	}

	// A settled status replaces the locally dialed value.
	d.SetStatus(&ipc.StatusData{Edge: "right", Width: 328})
	if d.target != 0 || d.Thickness() != 328 {
		t.Fatalf("target=%d thickness=%d after settled status", d.target, d.Thickness())
	}
}

func TestDockTab_SliderUsesHeightForTopEdge(t *testing.T) {
	fc := &fakeClient{}
	d := NewDockTab(fc, defaultKeyMap())
	d.SetStatus(&ipc.StatusData{Edge: "top", Width: 320, Height: 48})

	d, _ = d.Update(keyMsg("l"))
	if len(fc.grows) != 1 || fc.grows[0] != [2]int{0, sliderStep} {
		t.Fatalf("grows = %v, want height delta", fc.grows)
	}
	if d.Thickness() != 48+sliderStep {
		t.Fatalf("thickness = %d", d.Thickness())
	}
}

func TestDockTab_SliderClampsAtOne(t *testing.T) {
	fc := &fakeClient{}
	d := NewDockTab(fc, defaultKeyMap())
	d.SetStatus(&ipc.StatusData{Edge: "left", Width: 1})

	d, _ = d.Update(keyMsg("left"))
	if len(fc.grows) != 0 {
		t.Fatalf("grows = %v, want none at minimum", fc.grows)
	}
}

func TestDockTab_ReportsDaemonErrors(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection refused")}
	d := NewDockTab(fc, defaultKeyMap())
	d.SetStatus(&ipc.StatusData{Edge: "left", Width: 100})

	d, _ = d.Update(keyMsg("c"))
	if !strings.Contains(d.lastErr, "connection refused") {
		t.Fatalf("lastErr = %q", d.lastErr)
	}

	d.SetStatus(nil)
	d, _ = d.Update(keyMsg("right"))
	if d.lastErr != "daemon not running" {
		t.Fatalf("lastErr = %q", d.lastErr)
	}
}

func TestDockTab_CycleUpdatesEdge(t *testing.T) {
	fc := &fakeClient{edge: "bottom"}
	d := NewDockTab(fc, defaultKeyMap())
	d.SetStatus(&ipc.StatusData{Edge: "right", Width: 100, Height: 30})

	d, _ = d.Update(keyMsg("c"))
	if d.status.Edge != "bottom" || !d.horizontal() {
		t.Fatalf("edge = %q, want bottom", d.status.Edge)
	}
}

func TestDiffConfigs(t *testing.T) {
	orig := config.DefaultConfig()
	if got := diffConfigs(orig, cloneConfig(orig)); got != nil {
		t.Fatalf("identical configs produced diff: %v", got)
	}

	cur := cloneConfig(orig)
	cur.Width = 400
	lines := diffConfigs(orig, cur)

	var removed, added bool
	for _, l := range lines {
		if l.kind == diffRemoved && strings.Contains(l.text, "width: 320") {
			removed = true
		}
		if l.kind == diffAdded && strings.Contains(l.text, "width: 400") {
			added = true
		}
	}
	if !removed || !added {
		t.Fatalf("diff missing width change: %+v", lines)
	}
}

func TestWithContext_MarksGaps(t *testing.T) {
	var lines []diffLine
	for i := 0; i < 10; i++ {
		lines = append(lines, diffLine{kind: diffContext, text: "same"})
	}
	lines[7] = diffLine{kind: diffAdded, text: "new"}

	got := withContext(lines, 1)
	if len(got) != 4 || got[0].text != "..." || got[2].kind != diffAdded {
		t.Fatalf("withContext = %+v", got)
	}
}

func TestModel_SaveWritesConfigAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	fc := &fakeClient{}
	m := newModel(path, fc)
	if m.result == nil {
		t.Fatalf("config not loaded: %v", m.loadErr)
	}

	next, _ := m.Update(statusMsg{status: &ipc.StatusData{Edge: "right"}})
	m = next.(model)

	m.result.Config.Height = 64
	next, _ = m.Update(keyMsg("ctrl+s"))
	m = next.(model)
	if !m.saveOverlay.Active() {
		t.Fatalf("save overlay not shown")
	}
	next, _ = m.Update(keyMsg("enter"))
	m = next.(model)
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}
	if fc.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", fc.reloads)
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if res.Config.Height != 64 {
		t.Fatalf("saved height = %d, want 64", res.Config.Height)
	}
}

func TestModel_SaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(path, &fakeClient{})

	m.result.Config.Width = -1
	next, _ := m.Update(keyMsg("ctrl+s"))
	m = next.(model)
	next, _ = m.Update(keyMsg("enter"))
	m = next.(model)
	if m.saveOverlay.err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m := newModel(filepath.Join(t.TempDir(), "config.yaml"), &fakeClient{})
	next, _ := m.Update(keyMsg("tab"))
	if next.(model).activeTab != TabSettings {
		t.Fatalf("tab did not advance")
	}
	next, _ = next.Update(keyMsg("1"))
	if next.(model).activeTab != TabDock {
		t.Fatalf("1 did not select dock tab")
	}
}

func TestSettingsTab_ApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSettingsTab(cfg)
	s.startEditing()

	s.fEdge = "left"
	s.fWidth = " 250 "
	s.fHeight = "oops"
	s.fMonitor = "1"
	s.fAlwaysOnTop = false
	s.fToggle = ""
	s.applyForm()

	if cfg.Edge != "left" || cfg.Width != 250 || cfg.Monitor != 1 || cfg.AlwaysOnTop {
		t.Fatalf("applied config = %+v", cfg)
	}
	if cfg.Height != config.DefaultHeight {
		t.Fatalf("invalid height applied: %d", cfg.Height)
	}
	if cfg.Hotkeys.Toggle != "" {
		t.Fatalf("toggle hotkey not cleared")
	}
}
