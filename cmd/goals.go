package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/goals"
	"github.com/theirongolddev/paysplit/internal/model"
)

var goalsCmd = &cobra.Command{
	Use:   "goals [category|account]",
	Short: "Show time to goal for every account, or for one category or account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGoals,
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if len(args) == 1 {
			name, out, err := goalOutcome(args[0], s.budget.State())
			if err != nil {
				return err
			}
			fmt.Printf("\n  %s  %s\n", name, out.Message())
			return nil
		}

		r := s.budget.Report()

		fmt.Println()
		fmt.Println(cli.RenderTitle("GOALS"))
		fmt.Println()

		rows := make([][]string, 0, len(r.Goals))
		for _, g := range r.Goals {
			rows = append(rows, []string{
				g.Name,
				cli.FormatCurrency(g.Account.Balance),
				goalString(g.Account),
				cli.FormatCurrency(g.Account.MonthlySpend),
				g.Outcome.Message(),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Account", "Balance", "Goal", "Spend/mo", "To goal"},
			Rows:    rows,
		}))

		sum := r.GoalSummary
		fmt.Println()
		fmt.Printf("  Overall  %s  %s of %s\n",
			cli.RenderProgressBar(sum.Progress, 24),
			cli.FormatCurrency(sum.TotalBalance),
			cli.FormatCurrency(sum.TotalGoal))

		printActiveGoals(r)
		return nil
	})
}

// goalOutcome resolves key as a main category first, then as an account.
// The savings category has no account of its own and reports n/a.
func goalOutcome(key string, st model.State) (string, goals.Outcome, error) {
	if c, ok := model.ParseCategory(key); ok {
		return c.LabelFull(), goals.MonthsToCategoryGoal(c, st), nil
	}
	k, err := budget.ParseAccount(key)
	if err != nil {
		return "", goals.Outcome{}, err
	}
	return k.Label(), goals.MonthsToGoal(k, st), nil
}
