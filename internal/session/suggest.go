package session

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

// Suggest returns up to max candidates close to label, nearest first.
// Candidates further than a third of the label's length away are ignored,
// unless they contain the label.
func Suggest(label string, candidates []string, max int) []string {
	if label == "" || max <= 0 {
		return nil
	}
	limit := len(label)/3 + 1

	type scored struct {
		name string
		dist int
	}
	seen := make(map[string]bool)
	var matches []scored
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true

		d := levenshtein.ComputeDistance(strings.ToLower(label), strings.ToLower(c))
		if strings.Contains(c, label) && d > limit {
			d = limit
		}
		if d <= limit {
			matches = append(matches, scored{c, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > max {
		matches = matches[:max]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}
