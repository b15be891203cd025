// Package session ties the snapshots and metadata of one invocation together
// and answers label lookups against them.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/metadata"
	"github.com/metcalfc/pardiff/internal/subst"
)

// ErrLabelNotFound is wrapped by every LookupError.
var ErrLabelNotFound = errors.New("label not found")

// LookupError reports a label present in neither snapshot.
type LookupError struct {
	Label       string
	Suggestions []string
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("label %q not found in either text", e.Label)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

func (e *LookupError) Unwrap() error { return ErrLabelNotFound }

// Status describes how a paragraph differs between the snapshots.
type Status int

const (
	Unchanged Status = iota
	Changed
	Added
	Removed
)

func (s Status) String() string {
	switch s {
	case Changed:
		return "changed"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Options control rendering of a lookup.
type Options struct {
	// Lines flattens paragraphs to a single line before comparing.
	Lines bool
	// KeepLatex disables command substitution.
	KeepLatex bool
	Subst     subst.Options
	Renderer  diff.Renderer
}

// DefaultOptions renders with the default markers and substitution enabled.
func DefaultOptions() Options {
	return Options{Renderer: diff.NewRenderer()}
}

// Result is the rendered comparison of one label.
type Result struct {
	Label    string
	Status   Status
	Segments []diff.Segment
	Stats    diff.Stats
	Text     string
}

// Lookup compares the paragraph stored under label in both maps and renders
// it. A label found in only one map renders as a whole-paragraph addition or
// removal. A label found in neither returns a *LookupError.
func Lookup(label string, old, new *document.ParagraphMap, tables *metadata.Tables, opts Options) (Result, error) {
	label = strings.TrimSpace(label)
	o, inOld := old.Text(label)
	n, inNew := new.Text(label)

	res := Result{Label: label}
	switch {
	case inOld && inNew:
		res.Segments = diff.Compute(o, n, opts.Lines)
		res.Text = opts.Renderer.Render(res.Segments)
		res.Status = Unchanged
		if diff.Summarize(res.Segments).Changed() {
			res.Status = Changed
		}
	case inOld:
		res.Segments = diff.Whole(o, diff.Removed, opts.Lines)
		res.Text = opts.Renderer.RenderWhole(res.Segments)
		res.Status = Removed
	case inNew:
		res.Segments = diff.Whole(n, diff.Added, opts.Lines)
		res.Text = opts.Renderer.RenderWhole(res.Segments)
		res.Status = Added
	default:
		candidates := append(old.Labels(), new.Labels()...)
		return Result{}, &LookupError{
			Label:       label,
			Suggestions: Suggest(label, candidates, maxSuggestions),
		}
	}
	res.Stats = diff.Summarize(res.Segments)

	if !opts.KeepLatex {
		res.Text = subst.New(tables, opts.Subst).Apply(res.Text)
	}
	return res, nil
}
