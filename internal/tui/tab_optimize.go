package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/components"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

func (a App) renderOptimizeTab(cw int) string {
	t := theme.Active
	r := a.report

	var mainBody string
	if r.MainSuggestion == nil {
		mainBody = lipgloss.NewStyle().Foreground(t.TextDim).Render("Set an income to get a main split suggestion.")
	} else {
		rows := make([]string, 0, len(model.Categories)+2)
		for _, c := range model.Categories {
			rows = append(rows, a.suggestionRow(c.LabelFull(), a.state.Main[c], r.MainSuggestion.Percentages[c]))
		}
		rows = append(rows, "", lipgloss.NewStyle().Foreground(t.TextDim).Render(
			fmt.Sprintf("Spend and goal needs use %s of income · m to adopt", cli.FormatPercent(roundTenth(r.MainSuggestion.TotalNeedPercent)))))
		mainBody = strings.Join(rows, "\n")
	}

	savingsRows := make([]string, 0, len(model.SavingsCategories)+2)
	for _, sc := range model.SavingsCategories {
		savingsRows = append(savingsRows, a.suggestionRow(sc.LabelFull(), a.state.Savings[sc], r.SavingsSuggestion[sc]))
	}
	savingsRows = append(savingsRows, "", lipgloss.NewStyle().Foreground(t.TextDim).Render("Weighted by goal gap · s to adopt"))
	savingsBody := strings.Join(savingsRows, "\n")

	if a.isCompactLayout() {
		return components.ContentCard("Main Split", mainBody, cw) + "\n" +
			components.ContentCard("Savings Split", savingsBody, cw)
	}
	widths := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard("Main Split", mainBody, widths[0]),
		components.ContentCard("Savings Split", savingsBody, widths[1]),
	})
}

func (a App) suggestionRow(label string, current, suggested float64) string {
	t := theme.Active
	deltaColor := t.TextDim
	switch {
	case suggested > current:
		deltaColor = t.Green
	case suggested < current:
		deltaColor = t.Orange
	}
	return lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("%-22s", label)) +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Render(fmt.Sprintf("%7s", cli.FormatPercent(current))) +
		lipgloss.NewStyle().Foreground(t.Accent).Render(fmt.Sprintf(" → %7s", cli.FormatPercent(suggested))) +
		lipgloss.NewStyle().Foreground(deltaColor).Render(fmt.Sprintf("  %7s", cli.FormatPercentDelta(current, suggested)))
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
