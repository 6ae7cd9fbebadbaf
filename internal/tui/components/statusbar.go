package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, the last
// action message on the right. A save error replaces the message.
func RenderStatusBar(width int, hints, message string, saveErr error) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := message
	if saveErr != nil {
		right = lipgloss.NewStyle().Foreground(t.Red).Render("save failed: " + saveErr.Error())
	}
	if right != "" {
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
