// Package repl implements the interactive interpreter session.
package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type entryKind int

const (
	entryInput entryKind = iota
	entryBinding
	entryError
	entrySystem
)

type entry struct {
	kind entryKind
	text string
}

// Model is the REPL model
type Model struct {
	width  int
	height int
	ready  bool

	input    textinput.Model
	viewport viewport.Model

	session    *Session
	transcript []entry
	version    string
}

// NewModel creates a REPL model on eval
func NewModel(eval Evaluator, version string) Model {
	ti := textinput.New()
	ti.Placeholder = "Anweisung eingeben, z.B. x = 1 + 2;"
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle
	ti.CharLimit = 4000
	ti.Width = 80
	ti.Focus()

	m := Model{
		input:   ti,
		session: NewSession(eval),
		version: version,
	}
	m.addSystem("Willkommen. Jede Zeile wird mit allen bisherigen Zeilen ausgewertet.")
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line != "" {
				m.input.Reset()
				m.submit(line)
			}
			return m, nil

		case "ctrl+r":
			m.session.Reset()
			m.addSystem("Sitzung zurückgesetzt.")
			return m, nil

		case "ctrl+l":
			m.transcript = nil
			m.updateContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-7))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-7)
		}
		m.input.Width = max(10, msg.Width-8)
		m.updateContent()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) submit(line string) {
	m.transcript = append(m.transcript, entry{kind: entryInput, text: line})

	out := m.session.Submit(context.Background(), line)
	switch {
	case out.Error != nil:
		m.transcript = append(m.transcript, entry{kind: entryError, text: formatError(out)})
	case len(out.Changed) == 0:
		m.transcript = append(m.transcript, entry{kind: entrySystem, text: "keine Änderung"})
	default:
		for _, b := range out.Changed {
			m.transcript = append(m.transcript, entry{kind: entryBinding, text: fmt.Sprintf("%s = %d", b.Name, b.Value)})
		}
	}
	m.updateContent()
}

func formatError(out Outcome) string {
	e := out.Error
	if e.Line > 0 {
		return fmt.Sprintf("%s (Zeile %d, Spalte %d): %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (m *Model) addSystem(text string) {
	m.transcript = append(m.transcript, entry{kind: entrySystem, text: text})
	m.updateContent()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(FocusedInputStyle.Width(max(10, m.width-2)).Render(m.input.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle.Render("pascal")
	sub := SubtitleStyle.Render(" Ganzzahl-Interpreter " + m.version)
	return lipgloss.JoinHorizontal(lipgloss.Top, title, sub)
}

func (m *Model) renderFooter() string {
	help := "Enter: Auswerten • Ctrl+R: Zurücksetzen • Ctrl+L: Leeren • Esc: Beenden"
	state := fmt.Sprintf("Zeilen: %d  Variablen: %d", m.session.Lines(), len(m.session.Bindings()))

	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			help,
			strings.Repeat(" ", max(0, m.width-lipgloss.Width(help)-lipgloss.Width(state)-2)),
			state,
		),
	)
}

func (m *Model) updateContent() {
	var content strings.Builder

	for _, e := range m.transcript {
		switch e.kind {
		case entryInput:
			content.WriteString(PromptStyle.Render("> "))
			content.WriteString(e.text)
		case entryBinding:
			name, value, _ := strings.Cut(e.text, " = ")
			content.WriteString("  ")
			content.WriteString(BindingNameStyle.Render(name))
			content.WriteString(" = ")
			content.WriteString(BindingValueStyle.Render(value))
		case entryError:
			content.WriteString(ErrorMessageStyle.Render("  Fehler: " + e.text))
		case entrySystem:
			content.WriteString(SystemMessageStyle.Render(e.text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// Transcript returns the plain transcript lines
func (m Model) Transcript() []string {
	lines := make([]string, 0, len(m.transcript))
	for _, e := range m.transcript {
		switch e.kind {
		case entryInput:
			lines = append(lines, "> "+e.text)
		case entryError:
			lines = append(lines, "Fehler: "+e.text)
		default:
			lines = append(lines, e.text)
		}
	}
	return lines
}

// Session returns the underlying session
func (m Model) Session() *Session {
	return m.session
}

// Run starts the REPL on the terminal
func Run(eval Evaluator, version string) error {
	p := tea.NewProgram(NewModel(eval, version), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
