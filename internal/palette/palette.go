// Package palette drives an external dmenu-style launcher (rofi, fuzzel,
// wofi or dmenu) to pick a dock action.
package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the launcher closes without a selection.
var ErrCancelled = errors.New("palette cancelled")

// Item is one selectable row.
type Item struct {
	Label  string
	Action string
	Icon   string
	// Active highlights the row and preselects it.
	Active bool
}

// Launcher shows items and returns the chosen one.
type Launcher interface {
	Show(ctx context.Context, prompt string, items []Item, message string) (Item, error)
	Name() string
}

type kind int

const (
	kindRofi kind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

var kindNames = map[string]kind{
	"rofi":   kindRofi,
	"fuzzel": kindFuzzel,
	"wofi":   kindWofi,
	"dmenu":  kindDmenu,
}

// detectOrder is the preference order for "auto".
var detectOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

type launcher struct {
	command string
	kind    kind
}

// New returns the named launcher. "auto" or empty picks the first one found
// in PATH.
func New(name string) (Launcher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, n := range detectOrder {
			if _, err := lookPath(n); err == nil {
				return &launcher{command: n, kind: kindNames[n]}, nil
			}
		}
		return nil, fmt.Errorf("no launcher found in PATH (tried %s)", strings.Join(detectOrder, ", "))
	}
	k, ok := kindNames[name]
	if !ok {
		return nil, fmt.Errorf("unknown launcher %q (expected: auto, %s)", name, strings.Join(detectOrder, ", "))
	}
	if _, err := lookPath(name); err != nil {
		return nil, fmt.Errorf("launcher %q not found in PATH", name)
	}
	return &launcher{command: name, kind: k}, nil
}

func (l *launcher) Name() string { return l.command }

// byIndex reports whether the launcher prints the row index rather than
// the row text.
func (l *launcher) byIndex() bool {
	return l.kind == kindRofi || l.kind == kindFuzzel
}

func (l *launcher) Show(ctx context.Context, prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	cmd := exec.CommandContext(ctx, l.command, l.args(prompt, message, items)...)
	cmd.Stdin = strings.NewReader(l.input(items))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, items)
}

func (l *launcher) args(prompt, message string, items []Item) []string {
	var args []string
	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		if active := activeRows(items); len(active) > 0 {
			args = append(args, "-a", joinInts(active), "-selected-row", strconv.Itoa(active[0]))
		}
		if message != "" {
			args = append(args, "-mesg", message)
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindWofi:
		args = []string{"--dmenu", "--allow-images"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (l *launcher) input(items []Item) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = l.row(item)
	}
	return strings.Join(lines, "\n")
}

func (l *launcher) row(item Item) string {
	label := clean(item.Label)
	if l.kind != kindRofi {
		return label
	}
	label = html.EscapeString(label)
	if item.Active {
		label = "<b>" + label + "</b>"
	}
	// rofi row properties: one NUL, then \x1f-separated key/value pairs.
	if item.Icon == "" {
		return label
	}
	return label + "\x00icon\x1f" + strings.NewReplacer("\x00", "", "\x1f", "").Replace(clean(item.Icon))
}

func (l *launcher) parse(selection string, items []Item) (Item, error) {
	if l.byIndex() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if clean(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func activeRows(items []Item) []int {
	var out []int
	for i, item := range items {
		if item.Active {
			out = append(out, i)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func clean(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
