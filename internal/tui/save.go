package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/edgedock/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay manages the config save diff preview and confirmation workflow.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	err          error
	reloaded     bool
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the diff and opens the preview overlay.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.scrollOffset = 0

	lines := diffConfigs(original, current)
	if len(lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.diffLines = lines
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. save writes the config;
// reload, when set, asks the daemon to pick the new file up.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, save func(*config.Config) error, reload func() error) SaveOverlay {
	switch s.phase {
	case savePreview:
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "esc":
				s.phase = saveHidden
			case "enter", "y":
				s.err = cfg.Validate()
				if s.err == nil {
					s.err = save(cfg)
				}
				if s.err == nil && reload != nil {
					s.reloaded = reload() == nil
				}
				s.phase = saveResult
			case "up", "k":
				if s.scrollOffset > 0 {
					s.scrollOffset--
				}
			case "down", "j":
				s.scrollOffset++
			}
		}
	case saveResult:
		if _, ok := msg.(tea.KeyMsg); ok {
			s.phase = saveHidden
		}
	}
	return s
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

var (
	overlayTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	overlayFoot  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	diffStyles   = map[diffKind]lipgloss.Style{
		diffContext: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		diffRemoved: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		diffAdded:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
	diffPrefix = map[diffKind]string{diffContext: "  ", diffRemoved: "- ", diffAdded: "+ "}
)

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 80)
	innerW := max(boxW-6, 10)
	visible := max(areaH-10, 3)

	off := min(s.scrollOffset, max(len(s.diffLines)-visible, 0))
	end := min(off+visible, len(s.diffLines))

	var lines []string
	for _, dl := range s.diffLines[off:end] {
		text := dl.text
		if len(text) > innerW-2 {
			text = text[:innerW-2]
		}
		lines = append(lines, diffStyles[dl.kind].Render(diffPrefix[dl.kind]+text))
	}

	content := overlayTitle.Render("Save config: pending changes") + "\n\n" +
		strings.Join(lines, "\n") + "\n\n" +
		overlayFoot.Render("enter: save  esc: cancel  j/k: scroll")
	return overlayBox(areaW, areaH, boxW, content)
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 60)
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = ok.Render("Config saved")
		if s.reloaded {
			msg += "\n" + ok.Render("Daemon reloaded")
		}
	}
	return overlayBox(areaW, areaH, boxW, msg+"\n\n"+overlayFoot.Render("press any key to dismiss"))
}

func overlayBox(areaW, areaH, boxW int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

// diffConfigs renders both configs as YAML and returns the changed lines
// with two lines of context around each change.
func diffConfigs(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := yamlLines(original)
	if err != nil {
		return nil
	}
	b, err := yamlLines(current)
	if err != nil {
		return nil
	}
	return withContext(lcsDiff(a, b), 2)
}

func yamlLines(cfg *config.Config) ([]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

// lcsDiff is a line diff over the longest common subsequence. Configs are
// a few dozen lines, so the quadratic table is fine.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && a[i] == b[j]:
			out = append(out, diffLine{kind: diffContext, text: a[i]})
			i++
			j++
		case j == n || (i < m && lcs[i+1][j] >= lcs[i][j+1]):
			out = append(out, diffLine{kind: diffRemoved, text: a[i]})
			i++
		default:
			out = append(out, diffLine{kind: diffAdded, text: b[j]})
			j++
		}
	}
	return out
}

// withContext drops unchanged lines further than ctx from any change and
// marks each gap with "...". It returns nil when nothing changed.
func withContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for j := max(i-ctx, 0); j <= min(i+ctx, len(lines)-1); j++ {
			keep[j] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	gap := false
	for i, l := range lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap {
			out = append(out, diffLine{kind: diffContext, text: "..."})
		}
		gap = false
		out = append(out, l)
	}
	return out
}

// cloneConfig creates a deep copy of a Config via YAML round-trip.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
