package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/forecast"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/components"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

// lowRunwayMonths is the runway below which the card turns orange.
const lowRunwayMonths = 3

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.report

	runway := components.Metric{Label: "Runway", Value: cli.FormatRunway(r.Runway), Note: "fixed + flexible"}
	if r.Runway != nil && *r.Runway < lowRunwayMonths {
		runway.Color = t.Orange
	}
	if r.RunwayWithReserve != nil {
		runway.Note = "with rainy day " + cli.FormatMonths(*r.RunwayWithReserve)
	}

	trend := components.Metric{Label: "Forecast", Value: cli.Title(r.Forecast.Trend.String()), Note: r.Forecast.Message()}
	switch {
	case r.Forecast.Trend == forecast.Declining:
		trend.Color = t.Red
	case r.Forecast.Healthy():
		trend.Color = t.Green
	}

	income := components.Metric{
		Label: "Monthly Income",
		Value: cli.FormatCurrency(r.MonthlyIncome),
		Note:  string(a.state.Income.Type),
	}
	if a.state.Income.Type == model.Irregular {
		income.Note = "contract net " + cli.FormatCurrency(r.ExpectedContractNet)
	}

	metrics := []components.Metric{
		income,
		{Label: "Operating Balance", Value: cli.FormatCurrency(r.OperatingBalance), Note: cli.FormatCurrency(r.OperatingSpend) + "/mo spend"},
		runway,
		trend,
	}

	var b strings.Builder
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	balances := a.renderBalances()
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Balances", balances, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Active Goals", a.renderActiveGoals(cw), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Balances", balances, widths[0]),
			components.ContentCard("Active Goals", a.renderActiveGoals(widths[1]), widths[1]),
		}))
	}

	if warn := percentWarnings(r.MainTotal, r.SavingsTotal); warn != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Yellow).Render(warn))
	}
	return b.String()
}

func (a App) renderBalances() string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	for i, k := range model.AccountKeys {
		acct := a.state.Accounts[k]
		note := ""
		if acct.MonthlySpend.IsPositive() {
			note = cli.FormatCurrency(acct.MonthlySpend) + "/mo"
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", k.Label())))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%10s", cli.FormatCurrency(acct.Balance))))
		b.WriteString("  " + dimStyle.Render(note))
		if i < len(model.AccountKeys)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderActiveGoals(outerWidth int) string {
	if len(a.report.ActiveGoals) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Active.TextDim).Render("No open goals.")
	}
	barW := components.CardInnerWidth(outerWidth) - 22 - 16
	if barW < 8 {
		barW = 8
	}
	lines := make([]string, 0, len(a.report.ActiveGoals))
	for _, g := range a.report.ActiveGoals {
		lines = append(lines, components.GoalBar(g.Name, g.Progress, g.Outcome.Message(), 20, barW))
	}
	return strings.Join(lines, "\n")
}

// percentWarnings flags percentage vectors that do not sum to 100.
func percentWarnings(mainTotal, savingsTotal float64) string {
	var parts []string
	if mainTotal != 100 {
		parts = append(parts, "main split totals "+cli.FormatPercent(mainTotal))
	}
	if savingsTotal != 100 {
		parts = append(parts, "savings split totals "+cli.FormatPercent(savingsTotal))
	}
	if len(parts) == 0 {
		return ""
	}
	return "⚠ " + strings.Join(parts, ", ")
}
