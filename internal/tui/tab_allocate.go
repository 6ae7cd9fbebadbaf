package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/components"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

func (a App) renderAllocateTab(cw int) string {
	t := theme.Active
	ev := a.preview

	tax := "off"
	if ev.DeductTax {
		tax = "33% withheld"
	}
	metrics := []components.Metric{
		{Label: "Paycheck", Value: cli.FormatCurrencyFull(a.state.Paycheck), Note: "press e to edit"},
		{Label: "Tax", Value: cli.FormatCurrencyFull(ev.TaxWithheld), Note: tax},
		{Label: "Net", Value: cli.FormatCurrencyFull(ev.Net), Color: t.Green, Note: "enter to apply"},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	if !ev.Net.IsPositive() {
		hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("Enter a paycheck to see how it splits.")
		b.WriteString(components.ContentCard("Split", hint, cw))
		return b.String()
	}

	inner := components.CardInnerWidth(cw)
	barW := inner - 24 - 14
	if barW < 8 {
		barW = 8
	}

	mainLines := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		amt := ev.MainAmount(c)
		mainLines = append(mainLines, components.ShareBar(
			c.LabelFull()+" "+cli.FormatPercent(a.state.Main[c]),
			cli.FormatCurrencyFull(amt), ratio(amt, ev.Net), 24, barW))
	}
	b.WriteString(components.ContentCard("Main", strings.Join(mainLines, "\n"), cw))
	b.WriteString("\n")

	pool := ev.MainAmount(model.Savings)
	savingsLines := make([]string, 0, len(model.SavingsCategories))
	for _, sc := range model.SavingsCategories {
		amt := ev.SavingsAmount(sc)
		savingsLines = append(savingsLines, components.ShareBar(
			sc.LabelFull()+" "+cli.FormatPercent(a.state.Savings[sc]),
			cli.FormatCurrencyFull(amt), ratio(amt, pool), 24, barW))
	}
	b.WriteString(components.ContentCard("Savings", strings.Join(savingsLines, "\n"), cw))
	return b.String()
}

// ratio returns part/whole as a float, or 0 when whole is not positive.
func ratio(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).InexactFloat64()
}
