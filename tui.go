package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/pardiff/internal/session"
)

type reloadMsg struct {
	changed bool
	err     error
}

type model struct {
	store    *session.Store
	styles   styles
	input    textinput.Model
	output   viewport.Model
	label    string
	rendered string
	status   string
	quitting bool
	width    int
	height   int
}

func newModel(store *session.Store, st styles) model {
	ti := textinput.New()
	ti.Prompt = "Label: "
	ti.Placeholder = "name or number"
	ti.CharLimit = 256
	ti.Focus()

	m := model{
		store:  store,
		styles: st,
		input:  ti,
		output: viewport.New(80, 20),
		width:  80,
		height: 24,
	}
	m.status = m.summary()
	return m
}

func (m model) summary() string {
	s := m.store.Current()
	return fmt.Sprintf("%d old / %d new paragraphs | %d citations | %d references",
		s.Old.Paragraphs.Len(), s.New.Paragraphs.Len(),
		len(s.Tables.Citations), len(s.Tables.References))
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			label := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if label == "" {
				return m, nil
			}
			m.lookup(label)
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = msg.Width
		// Reserve 3 lines: status, input and controls
		m.output.Height = max(msg.Height-3, 1)
		m.setContent()
		return m, nil

	case reloadMsg:
		switch {
		case msg.err != nil:
			m.status = m.styles.notFound.Render("reload failed: " + msg.err.Error())
		case msg.changed:
			m.status = "reloaded | " + m.summary()
			if m.label != "" {
				m.lookup(m.label)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) lookup(label string) {
	res, err := m.store.Current().Lookup(label)
	if err != nil {
		var lookupErr *session.LookupError
		if errors.As(err, &lookupErr) {
			m.status = m.styles.notFound.Render(notFoundMessage(lookupErr))
		} else {
			m.status = m.styles.notFound.Render(err.Error())
		}
		m.label, m.rendered = "", ""
		m.setContent()
		return
	}

	m.label = res.Label
	m.rendered = res.Text
	m.status = fmt.Sprintf("%s | %s | +%d -%d words",
		res.Label, res.Status, res.Stats.Added, res.Stats.Removed)
	m.setContent()
	m.output.GotoTop()
}

func (m *model) setContent() {
	if m.rendered == "" {
		m.output.SetContent("")
		return
	}
	m.output.SetContent(lipgloss.NewStyle().Width(m.width).Render(m.rendered))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	controls := m.styles.controls.Render("ENTER: show label  ↑/↓ PGUP/PGDN: scroll  ESC: quit")

	var sb strings.Builder
	sb.WriteString(m.styles.status.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(m.output.View())
	sb.WriteString("\n")
	sb.WriteString(controls)
	return sb.String()
}

// runTUI runs the interactive prompt. The last rendering is printed after
// the program exits so it stays in the terminal's scrollback.
func (a *app) runTUI(store *session.Store, watch bool) error {
	p := tea.NewProgram(newModel(store, a.styles), tea.WithAltScreen())

	if watch {
		w, err := session.NewWatcher(store, func(changed bool, err error) {
			p.Send(reloadMsg{changed: changed, err: err})
		})
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()
	}

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.rendered != "" {
		fmt.Fprintln(a.stdout, m.rendered)
	}
	return nil
}
