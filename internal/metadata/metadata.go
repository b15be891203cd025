// Package metadata parses the auxiliary file written by a typesetting pass
// into citation and cross-reference lookup tables.
package metadata

import (
	"strings"

	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/logging"
)

const (
	citationMarker  = `\bibcite{`
	referenceMarker = `\newlabel{`
	fieldSeparator  = "}{"
	spaceFactor     = `\spacefactor`
)

// Citation is the display form of one bibliography entry.
type Citation struct {
	Author string
	Year   string
}

// Tables holds the citation and cross-reference lookups. It is read-only
// once parsed and safe for concurrent readers.
type Tables struct {
	Citations  map[string]Citation
	References map[string]string
	// Digest identifies the parsed file content.
	Digest string
}

// Empty returns tables with no entries.
func Empty() *Tables {
	return &Tables{
		Citations:  map[string]Citation{},
		References: map[string]string{},
	}
}

// Parse builds both tables from the contents of an auxiliary file.
func Parse(text string) *Tables {
	return &Tables{
		Citations:  ParseCitations(text),
		References: ParseReferences(text),
		Digest:     document.ComputeDigest(text),
	}
}

// Load reads and parses an auxiliary file. Read failures are returned as a
// *document.ReadError; malformed lines never fail the load.
func Load(path string) (*Tables, error) {
	text, err := document.ReadText(path)
	if err != nil {
		return nil, &document.ReadError{Path: path, Err: err}
	}
	t := Parse(text)

	logging.Info().
		Str("path", path).
		Int("citations", len(t.Citations)).
		Int("references", len(t.References)).
		Msg("metadata loaded")
	return t, nil
}

// Citation looks up a citation key.
func (t *Tables) Citation(key string) (Citation, bool) {
	if t == nil {
		return Citation{}, false
	}
	c, ok := t.Citations[key]
	return c, ok
}

// Reference looks up the display number of a label.
func (t *Tables) Reference(label string) (string, bool) {
	if t == nil {
		return "", false
	}
	n, ok := t.References[label]
	return n, ok
}

// ParseCitations extracts bibliography entries of the form
//
//	\bibcite{key}{{num}{year}{{Author et~al.\spacefactor \@m {}}}{{}}}
func ParseCitations(text string) map[string]Citation {
	out := make(map[string]Citation)
	for n, line := range lines(text) {
		rest, ok := strings.CutPrefix(line, citationMarker)
		if !ok {
			continue
		}
		fields := strings.Split(rest, fieldSeparator)
		if len(fields) < 4 {
			logging.Debug().Int("line", n+1).Msg("skipping malformed bibcite")
			continue
		}
		author, _, _ := strings.Cut(fields[3], spaceFactor)
		out[trimField(fields[0])] = Citation{
			Author: strings.TrimSpace(strings.ReplaceAll(trimField(author), "~", " ")),
			Year:   trimField(fields[2]),
		}
	}
	return out
}

// ParseReferences extracts cross-reference numbers of the form
//
//	\newlabel{fig:map}{{7}{15}...}
func ParseReferences(text string) map[string]string {
	out := make(map[string]string)
	for n, line := range lines(text) {
		rest, ok := strings.CutPrefix(line, referenceMarker)
		if !ok {
			continue
		}
		fields := strings.SplitN(rest, fieldSeparator, 3)
		if len(fields) < 2 {
			logging.Debug().Int("line", n+1).Msg("skipping malformed newlabel")
			continue
		}
		out[trimField(fields[0])] = trimField(fields[1])
	}
	return out
}

func trimField(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "{"), "}")
}

func lines(text string) []string {
	out := strings.Split(text, "\n")
	for i, l := range out {
		out[i] = strings.TrimSuffix(l, "\r")
	}
	return out
}
