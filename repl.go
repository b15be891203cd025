package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/metcalfc/pardiff/internal/logging"
	"github.com/metcalfc/pardiff/internal/session"
)

const labelPrompt = "** Label:"

// runPrompt reads one label per line until EOF and prints each rendering.
// The prompt is only shown when a person is typing.
func (a *app) runPrompt(store *session.Store, prompt bool) error {
	scanner := bufio.NewScanner(a.stdin)
	for {
		if prompt {
			fmt.Fprintln(a.stdout, labelPrompt)
		}
		if !scanner.Scan() {
			break
		}
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		a.printLookup(label, store.Current())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read labels: %w", err)
	}
	return nil
}

// printLookup renders label to stdout, or a not-found notice.
func (a *app) printLookup(label string, s *session.Session) {
	res, err := s.Lookup(label)
	if err != nil {
		var lookupErr *session.LookupError
		if errors.As(err, &lookupErr) {
			fmt.Fprintln(a.stdout, a.styles.notFound.Render(notFoundMessage(lookupErr)))
			return
		}
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return
	}
	logging.Debug().
		Str("label", res.Label).
		Str("status", res.Status.String()).
		Int("added", res.Stats.Added).
		Int("removed", res.Stats.Removed).
		Msg("lookup")
	fmt.Fprintln(a.stdout, res.Text)
}

func notFoundMessage(err *session.LookupError) string {
	msg := fmt.Sprintf("Label %q not found in both texts", err.Label)
	if len(err.Suggestions) > 0 {
		msg += "; did you mean: " + strings.Join(err.Suggestions, ", ")
	}
	return msg
}
