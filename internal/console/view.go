package console

import (
	"fmt"
	"strings"
)

// View renders the console
func (m Model) View() string {
	if m.quitting {
		return "Console closed.\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	for _, line := range m.visibleLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.suggestions) > 0 {
		b.WriteString(suggestionStyle.Render(strings.Join(m.suggestions, "  ")))
		b.WriteString("\n")
	}

	b.WriteString(promptStyle.Render(fmt.Sprintf("%s> ", m.sender.Name())))
	b.WriteString(m.input)
	b.WriteString("█\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

// visibleLines returns the tail of the scrollback that fits the window.
func (m Model) visibleLines() []string {
	if m.height <= 0 {
		return m.lines
	}

	// header (3), prompt, suggestions, footer
	room := m.height - 6
	if room < 1 {
		room = 1
	}
	if len(m.lines) > room {
		return m.lines[len(m.lines)-room:]
	}
	return m.lines
}

// renderHeader renders the console header
func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "mccmd console"
	}

	totalWidth := 80
	if m.width > 0 {
		totalWidth = m.width
	}

	padding := totalWidth - len(title) - 4
	if padding < 0 {
		padding = 0
	}

	var b strings.Builder
	b.WriteString("╭")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╮\n")

	b.WriteString("│")
	b.WriteString(headerStyle.Render(title + strings.Repeat(" ", padding)))
	b.WriteString("│\n")

	b.WriteString("╰")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╯")

	return b.String()
}

// renderFooter renders the key help
func (m Model) renderFooter() string {
	return footerStyle.Render("[enter] run  [tab] complete  [↑/↓] history  [esc] quit")
}
