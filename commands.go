package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/metadata"
	"github.com/metcalfc/pardiff/internal/session"
	"github.com/metcalfc/pardiff/internal/subst"
)

func newLabelsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "labels OLD NEW",
		Short: "List labeled paragraphs and whether they changed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			s, err := session.Load(session.Sources{Old: args[0], New: args[1]}, a.opts)
			if err != nil {
				return err
			}
			a.printEntries(s)
			return nil
		},
	}
}

func (a *app) printEntries(s *session.Session) {
	for _, e := range s.Entries() {
		status := fmt.Sprintf("%-9s", e.Status)
		switch e.Status {
		case session.Added, session.Changed:
			status = a.styles.added.Render(status)
		case session.Removed:
			status = a.styles.removed.Render(status)
		default:
			status = a.styles.unchanged.Render(status)
		}
		fmt.Fprintf(a.stdout, "%s  %-12s +%d -%d\n", status, e.Label, e.Stats.Added, e.Stats.Removed)
	}
}

func newCompareCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare OLD NEW",
		Short: "Diff two whole texts without paragraph labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			return a.runCompare(args[0], args[1], o.aux)
		},
	}
	cmd.Flags().StringVar(&o.aux, "aux", "", "Auxiliary file for citations and references")
	return cmd
}

func (a *app) runCompare(oldPath, newPath, auxPath string) error {
	old, err := document.ReadText(oldPath)
	if err != nil {
		return &document.ReadError{Path: oldPath, Err: err}
	}
	new, err := document.ReadText(newPath)
	if err != nil {
		return &document.ReadError{Path: newPath, Err: err}
	}
	tables := metadata.Empty()
	if auxPath != "" {
		if tables, err = metadata.Load(auxPath); err != nil {
			return err
		}
	}

	text := a.opts.Renderer.Render(diff.Compute(old, new, a.opts.Lines))
	if !a.opts.KeepLatex {
		text = subst.New(tables, a.opts.Subst).Apply(text)
	}
	fmt.Fprintln(a.stdout, text)
	return nil
}
