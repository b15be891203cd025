package subst

import (
	"fmt"
	"strings"

	"github.com/metcalfc/pardiff/internal/metadata"
)

// CiteFallback selects how citation keys missing from the metadata render.
type CiteFallback int

const (
	// CiteFallbackRaw emits the unresolved key itself.
	CiteFallbackRaw CiteFallback = iota
	// CiteFallbackDrop leaves unresolved keys out of the rendered list.
	CiteFallbackDrop
)

func (f CiteFallback) String() string {
	if f == CiteFallbackDrop {
		return "drop"
	}
	return "raw"
}

// ParseCiteFallback accepts "raw" or "drop".
func ParseCiteFallback(s string) (CiteFallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return CiteFallbackRaw, nil
	case "drop":
		return CiteFallbackDrop, nil
	default:
		return CiteFallbackRaw, fmt.Errorf("unknown cite fallback %q (want raw or drop)", s)
	}
}

// Options tune substitution.
type Options struct {
	CiteFallback CiteFallback
}

// Rule renders the argument of one command.
type Rule func(e *Engine, arg string) string

// Rules maps command names to their renderings. Names not listed here use
// the engine's default rule.
var Rules = map[string]Rule{
	"ref":    renderRef,
	"cite":   renderCite,
	"citep":  renderCitep,
	"texttt": renderTexttt,
	"url":    renderURL,
}

// Engine applies the rule table using one set of metadata tables.
type Engine struct {
	tables *metadata.Tables
	opts   Options
}

// New returns an engine resolving against tables. A nil tables value
// behaves as empty tables.
func New(tables *metadata.Tables, opts Options) *Engine {
	if tables == nil {
		tables = metadata.Empty()
	}
	return &Engine{tables: tables, opts: opts}
}

// Apply rewrites every command call in text.
func (e *Engine) Apply(text string) string {
	return e.Render(Tokenize(text))
}

// Render concatenates text tokens and the rendering of each call.
func (e *Engine) Render(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.Kind == Call {
			sb.WriteString(e.RenderCall(tok.Name, tok.Arg))
			continue
		}
		sb.WriteString(tok.Raw)
	}
	return sb.String()
}

// RenderCall renders a single command call.
func (e *Engine) RenderCall(name, arg string) string {
	if rule, ok := Rules[name]; ok {
		return rule(e, arg)
	}
	return renderDefault(name, arg)
}

// renderDefault emits a markup function call named after the command, so
// custom commands work once a function of that name is defined.
func renderDefault(name, arg string) string {
	return "#" + name + "()[" + arg + "]"
}

func renderRef(e *Engine, arg string) string {
	if n, ok := e.tables.Reference(arg); ok {
		return n
	}
	return arg
}

func renderCite(e *Engine, arg string) string {
	return e.citations(arg, "%s (%s)", ", ")
}

func renderCitep(e *Engine, arg string) string {
	return e.citations(arg, "%s, %s", "; ")
}

func (e *Engine) citations(arg, format, sep string) string {
	var parts []string
	for _, key := range strings.Split(arg, ",") {
		key = strings.TrimSpace(key)
		c, ok := e.tables.Citation(key)
		switch {
		case ok:
			parts = append(parts, fmt.Sprintf(format, c.Author, c.Year))
		case e.opts.CiteFallback == CiteFallbackRaw:
			parts = append(parts, key)
		}
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func renderTexttt(_ *Engine, arg string) string {
	return "`" + arg + "`"
}

func renderURL(_ *Engine, arg string) string {
	return `#link("` + arg + `")`
}
