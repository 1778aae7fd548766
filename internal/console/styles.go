package console

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00ADD8")).
			Padding(0, 1)

	// Echoed input lines
	echoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	// System notices
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ADD8")).
			Italic(true)

	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFA500"))

	// Tab completion candidates
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF55"))

	// Footer style
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))
)

// colorCodes maps the host's "&x" colour codes to terminal colours.
var colorCodes = map[rune]lipgloss.Color{
	'0': "#000000",
	'1': "#0000AA",
	'2': "#00AA00",
	'3': "#00AAAA",
	'4': "#AA0000",
	'5': "#AA00AA",
	'6': "#FFAA00",
	'7': "#AAAAAA",
	'8': "#555555",
	'9': "#5555FF",
	'a': "#55FF55",
	'b': "#55FFFF",
	'c': "#FF5555",
	'd': "#FF55FF",
	'e': "#FFFF55",
	'f': "#FFFFFF",
}

// applyCode returns style updated for code and whether code is known.
// A colour resets the formatting codes, as the game client does.
func applyCode(style lipgloss.Style, code rune) (lipgloss.Style, bool) {
	if color, ok := colorCodes[code]; ok {
		return lipgloss.NewStyle().Foreground(color), true
	}
	switch code {
	case 'l':
		return style.Bold(true), true
	case 'm':
		return style.Strikethrough(true), true
	case 'n':
		return style.Underline(true), true
	case 'o':
		return style.Italic(true), true
	case 'r':
		return lipgloss.NewStyle(), true
	}
	return style, false
}

// RenderColorCodes renders "&c"-style codes as terminal styles. Unknown codes
// are kept as typed.
func RenderColorCodes(text string) string {
	var out, segment strings.Builder
	style := lipgloss.NewStyle()

	flush := func() {
		if segment.Len() > 0 {
			out.WriteString(style.Render(segment.String()))
			segment.Reset()
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '&' && i+1 < len(runes) {
			code := unicode.ToLower(runes[i+1])
			if next, ok := applyCode(style, code); ok {
				flush()
				style = next
				i++
				continue
			}
		}
		segment.WriteRune(runes[i])
	}
	flush()
	return out.String()
}

// StripColorCodes removes every known "&x" code.
func StripColorCodes(text string) string {
	var out strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '&' && i+1 < len(runes) {
			code := unicode.ToLower(runes[i+1])
			if _, ok := applyCode(lipgloss.NewStyle(), code); ok {
				i++
				continue
			}
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}
