package diff

import "strings"

// Markers are the wrappers placed around added and removed runs.
type Markers struct {
	AddOpen  string
	AddClose string
	RemOpen  string
	RemClose string
}

// DefaultMarkers wraps runs in the target markup's #add[...] and #rem[...]
// calls.
var DefaultMarkers = Markers{
	AddOpen:  "#add[",
	AddClose: "]",
	RemOpen:  "#rem[",
	RemClose: "]",
}

// Painter decorates the text of an added or removed segment inside its
// marker, typically with terminal colours. It must not introduce backslashes.
type Painter func(s Segment) string

// Renderer turns segments into annotated text.
type Renderer struct {
	Markers Markers
	Paint   Painter
}

// NewRenderer returns a renderer using DefaultMarkers and no painting.
func NewRenderer() Renderer {
	return Renderer{Markers: DefaultMarkers}
}

// Render emits same runs verbatim and wraps added and removed runs in their
// markers. A delimiter follows every run. Runs with no text, such as the
// empty token of an empty paragraph, are left out.
func (r Renderer) Render(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		text := s.Text
		if r.Paint != nil && s.Op != Same {
			text = r.Paint(s)
		}
		switch s.Op {
		case Added:
			sb.WriteString(r.Markers.AddOpen)
			sb.WriteString(text)
			sb.WriteString(r.Markers.AddClose)
		case Removed:
			sb.WriteString(r.Markers.RemOpen)
			sb.WriteString(text)
			sb.WriteString(r.Markers.RemClose)
		default:
			sb.WriteString(text)
		}
		sb.WriteString(Delimiter)
	}
	return sb.String()
}

// RenderWhole renders a single-revision paragraph without a trailing
// delimiter.
func (r Renderer) RenderWhole(segments []Segment) string {
	return strings.TrimSuffix(r.Render(segments), Delimiter)
}

// Stats counts tokens per classification.
type Stats struct {
	Same    int
	Added   int
	Removed int
}

// Changed reports whether any token was added or removed.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// Summarize counts the tokens of each classification in segments.
func Summarize(segments []Segment) Stats {
	var st Stats
	for _, s := range segments {
		switch s.Op {
		case Added:
			st.Added += s.Tokens
		case Removed:
			st.Removed += s.Tokens
		default:
			st.Same += s.Tokens
		}
	}
	return st
}
