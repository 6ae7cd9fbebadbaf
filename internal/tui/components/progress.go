package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

// ColorForProgress returns the bar color for a goal at pct percent.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 100:
		return t.Green
	case pct >= 50:
		return t.Accent
	case pct >= 25:
		return t.Yellow
	default:
		return t.Orange
	}
}

// GoalBar renders a labeled goal progress bar. pct is 0-100; values above
// 100 render as a full bar.
func GoalBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active

	ratio := pct / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	color := ColorForProgress(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(ratio) + " " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct)) + "  " +
		noteStyle.Render(note)
}

// ShareBar renders a proportional bar for an allocation share.
func ShareBar(label, amount string, share float64, labelW, barWidth int) string {
	t := theme.Active

	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	bar := progress.New(
		progress.WithSolidFill(string(t.Blue)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.Surface)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(share) + " " +
		amountStyle.Render(amount)
}
