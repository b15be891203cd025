// Package diff aligns two paragraph revisions token by token and renders the
// result as add/remove annotated text.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Delimiter separates tokens. It is also re-inserted between rendered runs.
const Delimiter = " "

// Op classifies a segment.
type Op int

const (
	Same Op = iota
	Added
	Removed
)

func (o Op) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "same"
	}
}

// Segment is one contiguous run of tokens with the same classification.
type Segment struct {
	Op     Op
	Text   string
	Tokens int
	// Whole marks a paragraph present in only one revision.
	Whole  bool
}

// Flatten replaces newlines with spaces so a paragraph compares as one line.
func Flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// Compute returns the minimal edit script between old and new as segments.
// With lines set both texts are flattened first.
func Compute(old, new string, lines bool) []Segment {
	if lines {
		old, new = Flatten(old), Flatten(new)
	}

	enc := newEncoder()
	a := enc.encode(strings.Split(old, Delimiter))
	b := enc.encode(strings.Split(new, Delimiter))

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // always search for the minimal script

	diffs := dmp.DiffMainRunes(a, b, false)
	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		tokens := enc.decode(d.Text)
		if len(tokens) == 0 {
			continue
		}
		segments = append(segments, Segment{
			Op:     opOf(d.Type),
			Text:   strings.Join(tokens, Delimiter),
			Tokens: len(tokens),
		})
	}
	return segments
}

// Whole is the fallback for a paragraph present in only one revision: the
// entire text becomes a single Added or Removed segment.
func Whole(text string, op Op, lines bool) []Segment {
	if lines {
		text = Flatten(text)
	}
	tokens := 0
	if text != "" {
		tokens = len(strings.Split(text, Delimiter))
	}
	return []Segment{{
		Op:     op,
		Text:   text,
		Tokens: tokens,
		Whole:  true,
	}}
}

// OldText reassembles the old revision from segments.
func OldText(segments []Segment) string {
	return join(segments, Added)
}

// NewText reassembles the new revision from segments.
func NewText(segments []Segment) string {
	return join(segments, Removed)
}

func join(segments []Segment, skip Op) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Op != skip {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, Delimiter)
}

func opOf(t diffmatchpatch.Operation) Op {
	switch t {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Same
	}
}

// encoder maps every distinct token to one rune so the character based
// differ aligns whole tokens.
type encoder struct {
	runes  map[string]rune
	tokens []string
}

func newEncoder() *encoder {
	return &encoder{runes: make(map[string]rune)}
}

func (e *encoder) encode(tokens []string) []rune {
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		r, ok := e.runes[tok]
		if !ok {
			r = indexRune(len(e.tokens))
			e.runes[tok] = r
			e.tokens = append(e.tokens, tok)
		}
		out[i] = r
	}
	return out
}

func (e *encoder) decode(s string) []string {
	var out []string
	for _, r := range s {
		out = append(out, e.tokens[runeIndex(r)])
	}
	return out
}

// Surrogate code points do not survive a string round trip.
const (
	surrogateMin = 0xD800
	surrogateLen = 0x800
)

func indexRune(i int) rune {
	r := rune(i + 1)
	if r >= surrogateMin {
		r += surrogateLen
	}
	return r
}

func runeIndex(r rune) int {
	if r >= surrogateMin+surrogateLen {
		r -= surrogateLen
	}
	return int(r) - 1
}
