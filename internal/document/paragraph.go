// Package document loads manuscript snapshots and indexes their labeled
// paragraphs.
package document

import (
	"strconv"
	"strings"
)

// LabelMarker opens a paragraph label. The label name runs up to the next
// closing brace.
const LabelMarker = `\paralabel{par:`

const (
	labelTerminator   = "}"
	paragraphBoundary = "\n\n"
)

// Paragraph is one labeled paragraph of a snapshot.
type Paragraph struct {
	Label   string
	Ordinal int
	Text    string
}

// Key returns the ordinal lookup key of the paragraph.
func (p Paragraph) Key() string {
	return strconv.Itoa(p.Ordinal)
}

// ParagraphMap indexes the labeled paragraphs of one snapshot by label name
// and by 1-based ordinal. It is read-only once built.
type ParagraphMap struct {
	paragraphs []Paragraph
	index      map[string]int
}

// ExtractParagraphs splits text on LabelMarker and indexes every paragraph
// that has a terminated label. Text before the first marker is ignored.
//
// Keys are inserted in document order, ordinal first and then label, so a
// label that looks like a number shadows an earlier paragraph's ordinal.
func ExtractParagraphs(text string) *ParagraphMap {
	m := &ParagraphMap{index: make(map[string]int)}

	segments := strings.Split(text, LabelMarker)
	for _, seg := range segments[1:] {
		block, _, _ := strings.Cut(seg, paragraphBoundary)
		block = strings.TrimSpace(block)

		label, body, ok := strings.Cut(block, labelTerminator)
		if !ok {
			continue
		}

		p := Paragraph{
			Label:   strings.Clone(label),
			Ordinal: len(m.paragraphs) + 1,
			Text:    strings.Clone(strings.TrimSpace(body)),
		}
		m.paragraphs = append(m.paragraphs, p)

		i := len(m.paragraphs) - 1
		m.index[p.Key()] = i
		m.index[p.Label] = i
	}
	return m
}

// Get looks a paragraph up by label name or ordinal key.
func (m *ParagraphMap) Get(key string) (Paragraph, bool) {
	if m == nil {
		return Paragraph{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Paragraph{}, false
	}
	return m.paragraphs[i], true
}

// Text returns the paragraph body for key.
func (m *ParagraphMap) Text(key string) (string, bool) {
	p, ok := m.Get(key)
	return p.Text, ok
}

// Paragraphs returns the detected paragraphs in document order.
func (m *ParagraphMap) Paragraphs() []Paragraph {
	if m == nil {
		return nil
	}
	out := make([]Paragraph, len(m.paragraphs))
	copy(out, m.paragraphs)
	return out
}

// Labels returns the label names in document order.
func (m *ParagraphMap) Labels() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.paragraphs))
	for _, p := range m.paragraphs {
		out = append(out, p.Label)
	}
	return out
}

// Len returns the number of detected paragraphs.
func (m *ParagraphMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paragraphs)
}
