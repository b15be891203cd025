package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/metcalfc/pardiff/internal/config"
	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/logging"
	"github.com/metcalfc/pardiff/internal/session"
	"github.com/metcalfc/pardiff/internal/subst"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// styles holds the terminal styles for one output stream.
type styles struct {
	added     lipgloss.Style
	removed   lipgloss.Style
	whole     lipgloss.Style
	status    lipgloss.Style
	controls  lipgloss.Style
	notFound  lipgloss.Style
	unchanged lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		added: r.NewStyle().
			Foreground(lipgloss.Color("#00AAFF")),
		removed: r.NewStyle().
			Foreground(lipgloss.Color("#FF4444")),
		whole: r.NewStyle().
			Foreground(lipgloss.Color("#5555FF")),
		status: r.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1),
		controls: r.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true),
		notFound: r.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true),
		unchanged: r.NewStyle().
			Foreground(lipgloss.Color("#666666")),
	}
}

// painter colours added and removed runs line by line, so multi-line runs
// are not padded to a common width. Paragraphs found in only one text get
// their own colour.
func (s styles) painter() diff.Painter {
	return func(seg diff.Segment) string {
		style := s.added
		switch {
		case seg.Whole:
			style = s.whole
		case seg.Op == diff.Removed:
			style = s.removed
		}
		lines := strings.Split(seg.Text, "\n")
		for i, l := range lines {
			if l != "" {
				lines[i] = style.Render(l)
			}
		}
		return strings.Join(lines, "\n")
	}
}

// options are the command line flags.
type options struct {
	lines        bool
	keepLatex    bool
	citeFallback string
	color        string
	logLevel     string
	prettyLogs   bool
	addMarker    string
	remMarker    string
	labels       []string
	all          bool
	watch        bool
	noTUI        bool
	aux          string
}

// app is the resolved configuration for one invocation.
type app struct {
	cfg    config.Config
	styles styles
	color  bool
	opts   session.Options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "pardiff [flags] OLD NEW [AUX]",
		Short: "Paragraph-by-paragraph diff of two manuscript revisions",
		Long: `pardiff compares two revisions of a LaTeX manuscript whose paragraphs are
marked with \paralabel{par:<name>}. For each requested label it prints a
word-level diff wrapped in #add[...] / #rem[...], with \cite, \ref and other
commands rewritten into Typst markup using the optional AUX file.

Labels are read one per line from stdin, or chosen in an interactive prompt
when stdin is a terminal. Paragraphs may also be requested by their 1-based
position.

Snapshots may be compressed: ` + strings.Join(document.SupportedFormats(), ", ") + ".",
		Example: `  pardiff old.tex new.tex paper.aux       Prompt for labels
  pardiff -l old.tex new.tex               Compare paragraphs as single lines
  pardiff --label intro old.tex new.tex    Render one label and exit
  echo method | pardiff old.tex new.tex    Read labels from stdin`,
		Version:       version,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return cmd.Help()
			}
			a, err := newApp(cmd, &o)
			if err != nil {
				return err
			}
			src := session.Sources{Old: args[0], New: args[1]}
			if len(args) == 3 {
				src.Aux = args[2]
			}
			return a.runDiff(src, &o)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("pardiff %s (commit: %s, built: %s)\n", version, commit, date))

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&o.lines, "lines", "l", false, "Replace newlines with spaces before comparing")
	pf.BoolVarP(&o.keepLatex, "keep-latex", "k", false, "Do not detect or replace LaTeX commands")
	pf.StringVar(&o.citeFallback, "cite-fallback", "", "Unresolved citation keys: raw or drop")
	pf.StringVar(&o.color, "color", "", "Colour output: auto, always or never")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR|OFF)")
	pf.BoolVar(&o.prettyLogs, "pretty-logs", false, "Human-readable logs on stderr")
	pf.StringVar(&o.addMarker, "add-marker", "", "Template for additions, %s is the text")
	pf.StringVar(&o.remMarker, "rem-marker", "", "Template for removals, %s is the text")

	f := cmd.Flags()
	f.StringArrayVar(&o.labels, "label", nil, "Render this label and exit (repeatable)")
	f.BoolVar(&o.all, "all", false, "Render every label and exit")
	f.BoolVarP(&o.watch, "watch", "w", false, "Reload the files when they change")
	f.BoolVar(&o.noTUI, "no-tui", false, "Use the plain line prompt even on a terminal")

	cmd.AddCommand(newLabelsCmd(&o))
	cmd.AddCommand(newCompareCmd(&o))
	return cmd
}

// newApp merges flags over the loaded config and sets up logging and styles.
func newApp(cmd *cobra.Command, o *options) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, o, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Output: cmd.ErrOrStderr(),
		Pretty: o.prettyLogs,
	})

	a := &app{
		cfg:    cfg,
		stdin:  cmd.InOrStdin(),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	a.setupColor(cfg.Color)

	markers, _ := cfg.Markers()
	a.opts = session.Options{
		Lines:     cfg.Lines,
		KeepLatex: cfg.KeepLatex,
		Subst:     subst.Options{CiteFallback: cfg.CiteFallbackMode()},
		Renderer:  diff.Renderer{Markers: markers},
	}
	if a.color {
		a.opts.Renderer.Paint = a.styles.painter()
	}
	return a, nil
}

func applyFlags(cmd *cobra.Command, o *options, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("lines") {
		cfg.Lines = o.lines
	}
	if changed("keep-latex") {
		cfg.KeepLatex = o.keepLatex
	}
	if changed("cite-fallback") {
		cfg.CiteFallback = o.citeFallback
	}
	if changed("color") {
		cfg.Color = o.color
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("add-marker") {
		cfg.AddMarker = o.addMarker
	}
	if changed("rem-marker") {
		cfg.RemMarker = o.remMarker
	}
}

func (a *app) setupColor(mode string) {
	r := lipgloss.NewRenderer(a.stdout)
	switch strings.ToLower(mode) {
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
		a.color = true
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		a.color = isTerminal(a.stdout)
		if !a.color {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	a.styles = newStyles(r)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) runDiff(src session.Sources, o *options) error {
	store, err := session.Open(src, a.opts)
	if err != nil {
		return err
	}

	if o.all || len(o.labels) > 0 {
		labels := o.labels
		if o.all {
			labels = nil
			for _, e := range store.Current().Entries() {
				labels = append(labels, e.Label)
			}
		}
		for _, label := range labels {
			a.printLookup(label, store.Current())
		}
		return nil
	}

	interactive := !o.noTUI && isTerminal(a.stdin) && isTerminal(a.stdout)
	if interactive {
		return a.runTUI(store, o.watch)
	}

	if o.watch {
		w, err := session.NewWatcher(store, nil)
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()
	}
	return a.runPrompt(store, isTerminal(a.stdin))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
