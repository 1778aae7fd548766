package console

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case NoticeMsg:
		m.appendLines(noticeStyle.Render(string(msg)))
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		return m.submit(), nil

	case tea.KeyTab:
		return m.complete(), nil

	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		m.suggestions = nil
		return m, nil

	case tea.KeyUp:
		if m.historyIdx > 0 {
			m.historyIdx--
			m.input = m.history[m.historyIdx]
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
			m.input = m.history[m.historyIdx]
		} else {
			m.historyIdx = len(m.history)
			m.input = ""
		}
		return m, nil

	case tea.KeySpace:
		m.input += " "
		m.suggestions = nil
		return m, nil

	case tea.KeyRunes:
		m.input += string(msg.Runes)
		m.suggestions = nil
		return m, nil
	}

	return m, nil
}

// submit dispatches the input line and moves the sender's replies into the
// scrollback.
func (m Model) submit() Model {
	line := strings.TrimSpace(m.input)
	m.input = ""
	m.suggestions = nil
	if line == "" {
		return m
	}

	m.history = append(m.history, line)
	m.historyIdx = len(m.history)
	m.appendLines(echoStyle.Render("> " + line))

	if !m.dispatcher.Dispatch(m.sender, line) {
		slog.Debug("command not handled", "line", line, "sender", m.sender.Name())
	}
	for _, out := range m.outbox.Drain() {
		m.appendLines(RenderColorCodes(out))
	}
	return m
}

// complete asks the dispatcher for candidates for the last word. A single
// candidate replaces the word; several extend it to their common prefix and
// are listed below the prompt.
func (m Model) complete() Model {
	candidates := m.dispatcher.Complete(m.sender, m.input)
	if len(candidates) == 0 {
		m.suggestions = nil
		return m
	}

	idx := strings.LastIndex(m.input, " ")
	head, word := m.input[:idx+1], m.input[idx+1:]
	if idx < 0 && strings.HasPrefix(word, "/") {
		head, word = "/", word[1:]
	}

	if len(candidates) == 1 {
		m.input = head + candidates[0] + " "
		m.suggestions = nil
		return m
	}

	if prefix := commonPrefix(candidates); len(prefix) > len(word) {
		m.input = head + prefix
	}
	m.suggestions = candidates
	return m
}

// commonPrefix returns the longest case-insensitive common prefix, spelled
// as in the first candidate. Runes are compared whole so the prefix always
// ends on a rune boundary.
func commonPrefix(candidates []string) string {
	first := candidates[0]
	end := len(first)
	for _, c := range candidates[1:] {
		i, j := 0, 0
		for i < end && j < len(c) {
			r1, n1 := utf8.DecodeRuneInString(first[i:])
			r2, n2 := utf8.DecodeRuneInString(c[j:])
			if !strings.EqualFold(string(r1), string(r2)) {
				break
			}
			i += n1
			j += n2
		}
		end = i
	}
	return first[:end]
}
