// Package console is an interactive command prompt over a host command map,
// with tab completion and colour-code rendering.
package console

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steviee/mccmd/internal/command"
)

// maxScrollback bounds the number of lines kept in memory.
const maxScrollback = 500

// Dispatcher runs and completes command lines.
type Dispatcher interface {
	Dispatch(sender command.Sender, line string) bool
	Complete(sender command.Sender, line string) []string
}

// Model is the bubbletea model for the console.
type Model struct {
	dispatcher Dispatcher
	sender     command.Sender
	outbox     *Outbox
	title      string

	input       string
	lines       []string
	suggestions []string
	history     []string
	historyIdx  int

	width    int
	height   int
	quitting bool
}

// NewModel creates a console running lines as sender. outbox must be the
// writer sender sends its messages to.
func NewModel(title string, dispatcher Dispatcher, sender command.Sender, outbox *Outbox) *Model {
	return &Model{
		dispatcher: dispatcher,
		sender:     sender,
		outbox:     outbox,
		title:      title,
		lines:      []string{},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Lines returns the scrollback.
func (m Model) Lines() []string {
	return append([]string(nil), m.lines...)
}

// appendLines adds lines to the scrollback, dropping the oldest beyond
// maxScrollback.
func (m *Model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	if over := len(m.lines) - maxScrollback; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
}
