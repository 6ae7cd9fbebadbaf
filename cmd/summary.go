package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/forecast"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget overview: income, runway, forecast and active goals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		r := s.budget.Report()

		fmt.Println()
		fmt.Println(cli.RenderTitle("PAYSPLIT  Overview"))
		fmt.Println()

		rows := [][]string{
			{"Monthly income", cli.FormatCurrency(r.MonthlyIncome)},
			{"Operating balance", cli.FormatCurrency(r.OperatingBalance)},
			{"Operating spend", cli.FormatCurrency(r.OperatingSpend) + "/mo"},
			{"---"},
			{"Runway", cli.FormatRunway(r.Runway)},
			{"Runway w/ reserve", cli.FormatRunway(r.RunwayWithReserve)},
			{"Forecast", forecastLine(r.Forecast)},
			{"---"},
			{"Goal progress", fmt.Sprintf("%s of %s (%s)",
				cli.FormatCurrency(r.GoalSummary.TotalBalance),
				cli.FormatCurrency(r.GoalSummary.TotalGoal),
				cli.FormatPercent(roundTenth(r.GoalSummary.Progress)))},
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))

		printRunwayWarning(r)
		printActiveGoals(r)
		printTotalsWarning(r.MainTotal, r.SavingsTotal)
		return nil
	})
}

func forecastLine(f forecast.Forecast) string {
	return fmt.Sprintf("%s  %s", cli.Title(f.Trend.String()), f.Message())
}

func printRunwayWarning(r budget.Report) {
	if r.Runway != nil && *r.Runway < forecast.WarnRunwayMonths {
		fmt.Println()
		fmt.Println("  " + cli.Warn(fmt.Sprintf("Runway is under %d months.", forecast.WarnRunwayMonths)))
	}
}

func printActiveGoals(r budget.Report) {
	if len(r.ActiveGoals) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  Active goals")
	for _, g := range r.ActiveGoals {
		fmt.Printf("  %-26s %s  %s\n", g.Name, cli.RenderProgressBar(g.Progress, 20), cli.Muted(g.Outcome.Message()))
	}
}

func printTotalsWarning(mainTotal, savingsTotal float64) {
	if mainTotal != 100 {
		fmt.Println()
		fmt.Println("  " + cli.Bad(fmt.Sprintf("Main percentages total %s, not 100%%.", cli.FormatPercent(mainTotal))))
	}
	if savingsTotal != 100 {
		fmt.Println("  " + cli.Bad(fmt.Sprintf("Savings percentages total %s, not 100%%.", cli.FormatPercent(savingsTotal))))
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
