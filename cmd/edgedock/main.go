package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/ipc"
	"github.com/1broseidon/edgedock/internal/palette"
	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "dock":
		os.Exit(runDock(os.Args[2:]))
	case "undock":
		os.Exit(runSimple("undock", "Release the reserved edge and float the window.", os.Args[2:], ipc.NewClient().Clear))
	case "reposition":
		os.Exit(runSimple("reposition", "Re-query monitors and reapply the current edge.", os.Args[2:], ipc.NewClient().Reposition))
	case "reload":
		os.Exit(runSimple("reload", "Reload the daemon configuration.", os.Args[2:], ipc.NewClient().Reload))
	case "cycle":
		os.Exit(runEdgeCommand("cycle", "Move the dock to the next edge clockwise.", os.Args[2:], ipc.NewClient().CycleEdge))
	case "toggle":
		os.Exit(runEdgeCommand("toggle", "Undock if docked, otherwise dock to the last used edge.", os.Args[2:], ipc.NewClient().Toggle))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "palette":
		os.Exit(runPalette(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: edgedock <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the docking daemon (foreground)")
	fmt.Fprintln(w, "  status              Show dock status")
	fmt.Fprintln(w, "  monitors            List monitors in primary-first order")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  dock [EDGE]         Dock to left, top, right or bottom")
	fmt.Fprintln(w, "  undock              Release the reserved edge")
	fmt.Fprintln(w, "  toggle              Undock, or dock to the last used edge")
	fmt.Fprintln(w, "  cycle               Move to the next edge clockwise")
	fmt.Fprintln(w, "  resize              Change the dock thickness")
	fmt.Fprintln(w, "  reposition          Reapply the current edge")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  palette             Pick a dock action from rofi/fuzzel/wofi/dmenu")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'edgedock <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. ok is false when the caller should return code.
func parseNoArgs(fs *flag.FlagSet, name string, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func newFlagSet(name, usage, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
		fs.PrintDefaults()
	}
	return fs
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "edgedock status [--json]", "Show dock status via IPC.")
	asJSON := fs.Bool("json", false, "Print status as JSON")
	if code, ok := parseNoArgs(fs, "status", args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:   %v\n", s.DaemonRunning)
	fmt.Fprintf(w, "window:           0x%x\n", s.Window)
	fmt.Fprintf(w, "edge:             %s\n", s.Edge)
	fmt.Fprintf(w, "registered:       %v\n", s.Registered)
	fmt.Fprintf(w, "monitor:          %d %s\n", s.MonitorIndex, s.Monitor)
	fmt.Fprintf(w, "scale:            %.2f x %.2f\n", s.ScaleX, s.ScaleY)
	fmt.Fprintf(w, "size:             %dx%d\n", s.Width, s.Height)
	fmt.Fprintf(w, "reserved:         %s\n", s.Committed)
	fmt.Fprintf(w, "window_rect:      %s\n", s.Applied)
	fmt.Fprintf(w, "always_on_top:    %v\n", s.AlwaysOnTop)
	fmt.Fprintf(w, "fullscreen:       %v\n", s.Fullscreen)
	fmt.Fprintf(w, "pending:          %v\n", s.PendingApply || s.PendingSettings)
	fmt.Fprintf(w, "uptime_seconds:   %d\n", s.UptimeSeconds)
}

func runMonitors(args []string) int {
	fs := newFlagSet("monitors", "edgedock monitors [--json]", "List monitors as the daemon sees them, primary first.")
	asJSON := fs.Bool("json", false, "Print monitors as JSON")
	if code, ok := parseNoArgs(fs, "monitors", args); !ok {
		return code
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	printMonitors(os.Stdout, data.Monitors)
	return 0
}

func printMonitors(w io.Writer, monitors []ipc.MonitorInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tPRIMARY\tBOUNDS\tWORK AREA\tSCALE")
	for _, m := range monitors {
		fmt.Fprintf(tw, "%d\t%s\t%v\t%s\t%s\t%.2fx%.2f\n", m.Index, m.Name, m.Primary, m.Bounds, m.WorkArea, m.ScaleX, m.ScaleY)
	}
	tw.Flush()
}

func runDock(args []string) int {
	fs := newFlagSet("dock", "edgedock dock [left|top|right|bottom]", "Dock the window to a screen edge. Prompts for an edge when run interactively without one.")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var name string
	if fs.NArg() == 1 {
		name = fs.Arg(0)
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "dock requires an edge when stdin is not a terminal")
			return 2
		}
		picked, err := pickEdge()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		name = picked
	}

	edge, err := platform.ParseEdge(name)
	if err != nil || edge == platform.EdgeNone {
		fmt.Fprintf(os.Stderr, "invalid edge %q: want left, top, right or bottom\n", name)
		return 2
	}
	if err := ipc.NewClient().SetEdge(edge.String()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("docked: %s\n", edge)
	return 0
}

func pickEdge() (string, error) {
	var edge string
	err := huh.NewSelect[string]().
		Title("Dock to which edge?").
		Options(
			huh.NewOption("Left", "left"),
			huh.NewOption("Top", "top"),
			huh.NewOption("Right", "right"),
			huh.NewOption("Bottom", "bottom"),
		).
		Value(&edge).
		Run()
	return edge, err
}

func runSimple(name, summary string, args []string, call func() error) int {
	fs := newFlagSet(name, "edgedock "+name, summary)
	if code, ok := parseNoArgs(fs, name, args); !ok {
		return code
	}
	if err := call(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s: ok\n", name)
	return 0
}

func runEdgeCommand(name, summary string, args []string, call func() (string, error)) int {
	fs := newFlagSet(name, "edgedock "+name, summary)
	if code, ok := parseNoArgs(fs, name, args); !ok {
		return code
	}
	edge, err := call()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("edge: %s\n", edge)
	return 0
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "edgedock resize [--width N] [--height N] [--grow]",
		"Change the dock size in logical pixels. With --grow the values are deltas and may be negative.")
	width := fs.Int("width", 0, "Width of a left/right dock (0 keeps the current value)")
	height := fs.Int("height", 0, "Height of a top/bottom dock (0 keeps the current value)")
	grow := fs.Bool("grow", false, "Treat --width and --height as deltas")
	if code, ok := parseNoArgs(fs, "resize", args); !ok {
		return code
	}
	if err := validateResize(*width, *height, *grow); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	client := ipc.NewClient()
	var err error
	if *grow {
		err = client.Grow(*width, *height)
	} else {
		err = client.SetSize(*width, *height)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("resize: queued")
	return 0
}

func validateResize(width, height int, grow bool) error {
	if width == 0 && height == 0 {
		return fmt.Errorf("resize requires --width or --height")
	}
	if !grow && (width < 0 || height < 0) {
		return fmt.Errorf("sizes must be positive; use --grow for deltas")
	}
	return nil
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func loadConfigAt(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  edgedock config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  edgedock config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  edgedock config explain [--path PATH] <yaml.path>")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/edgedock/config.yaml)")

	switch args[0] {
	case "validate":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfigAt(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigAt(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigAt(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runPalette(args []string) int {
	fs := newFlagSet("palette", "edgedock palette [--launcher NAME]",
		"Show dock actions in a launcher menu. Suited to a window manager keybinding.")
	name := fs.String("launcher", "auto", "Launcher to use: auto, rofi, fuzzel, wofi, dmenu")
	if code, ok := parseNoArgs(fs, "palette", args); !ok {
		return code
	}

	l, err := palette.New(*name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := palette.Run(context.Background(), l, ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "edgedock tui [--path PATH]",
		"Interactive dock controls and config editor. Settings can be edited while the daemon is stopped.")
	path := fs.String("path", "", "Config file path (default: ~/.config/edgedock/config.yaml)")
	if code, ok := parseNoArgs(fs, "tui", args); !ok {
		return code
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
