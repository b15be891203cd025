package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/session"
)

const oldTex = `\section{Intro}
\paralabel{par:intro}
Hydrology maps use GIS \citep{smith2020}.

\paralabel{par:gone}
Removed later.`

const newTex = `\section{Intro}
\paralabel{par:intro}
Hydrology maps use modern GIS \citep{smith2020}
as in Figure \ref{fig:map}.

\paralabel{par:fresh}
See \url{https://example.org}.`

const auxText = `\bibcite{smith2020}{{4}{2020}{{Smith et~al.\spacefactor \@m {}}}{{}}}
\newlabel{fig:map}{{2}{3}}
`

type fixture struct {
	old, new, aux string
}

func setup(t *testing.T) fixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"LINES", "KEEP_LATEX", "CITE_FALLBACK", "COLOR", "LOG_LEVEL", "ADD_MARKER", "REM_MARKER"} {
		t.Setenv("PARDIFF_"+k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	f := fixture{
		old: filepath.Join(dir, "old.tex"),
		new: filepath.Join(dir, "new.tex"),
		aux: filepath.Join(dir, "paper.aux"),
	}
	require.NoError(t, os.WriteFile(f.old, []byte(oldTex), 0644))
	require.NoError(t, os.WriteFile(f.new, []byte(newTex), 0644))
	require.NoError(t, os.WriteFile(f.aux, []byte(auxText), 0644))
	return f
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHelpWithoutBothFiles(t *testing.T) {
	f := setup(t)
	for _, args := range [][]string{nil, {f.old}} {
		out, err := run(t, "", args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "pardiff [flags] OLD NEW [AUX]")
	}

	out, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "xz (.xz)")
	assert.Contains(t, out, "gzip (.gz)")
}

func TestBatchPrompt(t *testing.T) {
	f := setup(t)
	out, err := run(t, "intro\n\nfresh\nintr\ngone\n", f.old, f.new, f.aux)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Hydrology maps use #add[modern] GIS #rem[(Smith et al., 2020).] #add[(Smith et al., 2020)\nas in Figure 2.] ", strings.Join(lines[:2], "\n"))
	assert.Equal(t, `#add[See #link("https://example.org").]`, lines[2])
	assert.Contains(t, lines[3], `Label "intr" not found`)
	assert.Contains(t, lines[3], "did you mean: intro")
	assert.Equal(t, "#rem[Removed later.]", lines[4])
	assert.NotContains(t, out, labelPrompt)
}

func TestLineModeAndKeepLatex(t *testing.T) {
	f := setup(t)
	out, err := run(t, "", "-l", "-k", "--label", "intro", f.old, f.new, f.aux)
	require.NoError(t, err)
	assert.Equal(t, `Hydrology maps use #add[modern] GIS #rem[\citep{smith2020}.] #add[\citep{smith2020} as in Figure \ref{fig:map}.] `+"\n", out)
}

func TestLabelFlags(t *testing.T) {
	f := setup(t)
	out, err := run(t, "", "--label", "gone", "--label", "nope", f.old, f.new)
	require.NoError(t, err)
	assert.Contains(t, out, "#rem[Removed later.]")
	assert.Contains(t, out, `Label "nope" not found`)

	out, err = run(t, "", "--all", f.old, f.new)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "\n"), out)
	assert.Contains(t, out, "#add[See #link(\"https://example.org\").]")
}

func TestCustomMarkersAndDropFallback(t *testing.T) {
	f := setup(t)
	out, err := run(t, "", "--add-marker", "{+%s+}", "--rem-marker", "[-%s-]",
		"--cite-fallback", "drop", "-l", "--label", "1", f.old, f.new)
	require.NoError(t, err)
	assert.Equal(t, "Hydrology maps use {+modern+} GIS [-().-] {+() as in Figure fig:map.+} \n", out)
}

func TestInvalidFlags(t *testing.T) {
	f := setup(t)
	_, err := run(t, "", "--cite-fallback", "keep", f.old, f.new)
	assert.Error(t, err)

	_, err = run(t, "", "--add-marker", "no placeholder", f.old, f.new)
	assert.Error(t, err)
}

func TestFlagsOverrideInvalidSettings(t *testing.T) {
	f := setup(t)
	t.Setenv("PARDIFF_COLOR", "rainbow")
	conf := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "pardiff")
	require.NoError(t, os.MkdirAll(conf, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(conf, "config.yaml"), []byte("cite_fallback: keep\n"), 0644))

	_, err := run(t, "", "--label", "gone", f.old, f.new)
	assert.Error(t, err)

	out, err := run(t, "", "--color", "never", "--cite-fallback", "drop", "--label", "gone", f.old, f.new)
	require.NoError(t, err)
	assert.Contains(t, out, "#rem[Removed later.]")
}

func TestMissingFileIsFatal(t *testing.T) {
	f := setup(t)
	_, err := run(t, "intro\n", f.old, f.new+".missing", f.aux)
	var readErr *document.ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, f.new+".missing", readErr.Path)
}

func TestLabelsCommand(t *testing.T) {
	f := setup(t)
	out, err := run(t, "", "labels", f.old, f.new)
	require.NoError(t, err)
	assert.Equal(t, "changed    intro        +5 -1\nadded      fresh        +2 -0\nremoved    gone         +0 -2\n", out)
}

func TestCompareCommand(t *testing.T) {
	f := setup(t)
	a := filepath.Join(filepath.Dir(f.old), "a.txt")
	b := filepath.Join(filepath.Dir(f.old), "b.txt")
	require.NoError(t, os.WriteFile(a, []byte(`one \ref{fig:map} two`), 0644))
	require.NoError(t, os.WriteFile(b, []byte(`one \ref{fig:map} three`), 0644))

	out, err := run(t, "", "compare", "--aux", f.aux, a, b)
	require.NoError(t, err)
	assert.Equal(t, "one 2 #rem[two] #add[three] \n", out)
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "pardiff dev (commit: none, built: unknown)\n", out)
}

func TestPainterKeepsLines(t *testing.T) {
	st := newStyles(lipgloss.NewRenderer(io.Discard))
	paint := st.painter()
	assert.Equal(t, "short\nmuch longer line", paint(diff.Segment{Op: diff.Added, Text: "short\nmuch longer line"}))
	assert.Equal(t, "", paint(diff.Segment{Op: diff.Removed}))
}

func TestPainterColoursWholeParagraphs(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)
	paint := newStyles(r).painter()

	added := paint(diff.Segment{Op: diff.Added, Text: "text"})
	removed := paint(diff.Segment{Op: diff.Removed, Text: "text"})
	wholeAdded := paint(diff.Segment{Op: diff.Added, Text: "text", Whole: true})
	wholeRemoved := paint(diff.Segment{Op: diff.Removed, Text: "text", Whole: true})

	assert.Contains(t, wholeRemoved, "text")
	assert.NotEqual(t, "text", wholeRemoved)
	assert.NotEqual(t, removed, wholeRemoved)
	assert.NotEqual(t, added, wholeAdded)
	assert.NotEqual(t, added, removed)
	assert.Equal(t, wholeAdded, wholeRemoved)
}

func newTestModel(t *testing.T) model {
	t.Helper()
	f := setup(t)
	store, err := session.Open(session.Sources{Old: f.old, New: f.new, Aux: f.aux}, session.DefaultOptions())
	require.NoError(t, err)
	return newModel(store, newStyles(lipgloss.NewRenderer(io.Discard)))
}

func typeLabel(m model, label string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(label)})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model)
}

func TestModelLookup(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.status, "2 old / 2 new paragraphs")

	m = typeLabel(m, "gone")
	assert.Equal(t, "gone", m.label)
	assert.Equal(t, "#rem[Removed later.]", m.rendered)
	assert.Contains(t, m.status, "removed")
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Removed later.")

	m = typeLabel(m, "gnoe")
	assert.Empty(t, m.rendered)
	assert.Contains(t, m.status, "not found")
}

func TestModelResizeAndQuit(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(model)
	assert.Equal(t, 100, m.output.Width)
	assert.Equal(t, 37, m.output.Height)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModelReload(t *testing.T) {
	m := newTestModel(t)
	m = typeLabel(m, "intro")

	next, _ := m.Update(reloadMsg{err: errors.New("boom")})
	m = next.(model)
	assert.Contains(t, m.status, "reload failed: boom")

	next, _ = m.Update(reloadMsg{changed: true})
	m = next.(model)
	assert.Contains(t, m.status, "intro")
}
