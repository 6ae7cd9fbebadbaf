package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/forecast"
)

var runwayCmd = &cobra.Command{
	Use:   "runway",
	Short: "Show runway and the operating balance forecast",
	RunE:  runRunway,
}

func init() {
	rootCmd.AddCommand(runwayCmd)
}

func runRunway(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		r := s.budget.Report()
		f := r.Forecast

		fmt.Println()
		fmt.Println(cli.RenderTitle("RUNWAY"))
		fmt.Println()

		rows := [][]string{
			{"Operating balance", cli.FormatCurrency(r.OperatingBalance)},
			{"Operating spend", cli.FormatCurrency(r.OperatingSpend) + "/mo"},
			{"Runway", cli.FormatRunway(r.Runway)},
			{"Runway w/ reserve", cli.FormatRunway(r.RunwayWithReserve)},
			{"---"},
			{"Trend", cli.Title(f.Trend.String())},
			{"Status", f.Message()},
		}
		if f.Trend != forecast.Unknown {
			rows = append(rows,
				[]string{"Monthly income", cli.FormatCurrency(f.MonthlyIncome)},
				[]string{"Net monthly flow", cli.FormatCurrency(f.NetMonthlyFlow)},
				[]string{fmt.Sprintf("%d-month buffer", forecast.BufferMonths), cli.FormatCurrency(f.TargetBalance)},
			)
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))

		printRunwayWarning(r)
		if f.Trend == forecast.Declining {
			fmt.Println("  " + cli.Bad(fmt.Sprintf("Operating balance runs out in %s.", cli.FormatMonths(f.MonthsUntilDepleted))))
		}
		return nil
	})
}
