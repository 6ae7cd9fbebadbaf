package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

// Tab is a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in Name, -1 if absent
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Allocate", Key: 'a', KeyPos: 0},
	{Name: "Goals", Key: 'g', KeyPos: 0},
	{Name: "Optimize", Key: 't', KeyPos: 2},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.Accent).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	inactive := lipgloss.NewStyle().Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimKey := lipgloss.NewStyle().Foreground(t.TextDim)

	if tab.KeyPos < 0 || tab.KeyPos >= len(tab.Name) {
		return " " + inactive.Render(tab.Name) +
			dimKey.Render("[") + keyStyle.Render(string(tab.Key)) + dimKey.Render("]") + " "
	}
	return " " + inactive.Render(tab.Name[:tab.KeyPos]) +
		dimKey.Render("[") + keyStyle.Render(string(tab.Name[tab.KeyPos])) + dimKey.Render("]") +
		inactive.Render(tab.Name[tab.KeyPos+1:]) + " "
}

// TabVisualWidth returns the rendered column width of tab.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(width).
		Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
