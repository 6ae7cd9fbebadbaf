package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/tui/components"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	sum := a.report.GoalSummary

	metrics := []components.Metric{
		{Label: "Saved", Value: cli.FormatCurrency(sum.TotalBalance)},
		{Label: "Goal Total", Value: cli.FormatCurrency(sum.TotalGoal), Note: "excludes charity"},
		{Label: "Progress", Value: fmt.Sprintf("%.1f%%", sum.Progress), Color: components.ColorForProgress(sum.Progress)},
	}

	inner := components.CardInnerWidth(cw)
	barW := inner - 22 - 8 - 28
	if barW < 8 {
		barW = 8
	}
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	lines := make([]string, 0, len(a.report.Goals))
	for _, g := range a.report.Goals {
		if !g.Account.HasGoal() {
			lines = append(lines, lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("%-20s", g.Name))+" "+
				dim.Render(cli.FormatCurrency(g.Account.Balance)+" · no goal"))
			continue
		}
		note := fmt.Sprintf("%s of %s · %s",
			cli.FormatCurrency(g.Account.Balance),
			cli.FormatCurrency(g.Account.Goal),
			g.Outcome.Message())
		lines = append(lines, components.GoalBar(g.Name, g.Account.Progress(), note, 20, barW))
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Goals", strings.Join(lines, "\n"), cw))
	return b.String()
}
