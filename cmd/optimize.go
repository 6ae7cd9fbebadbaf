package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
)

var flagOptimizeApply string

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Suggest percentages from observed spend and goals",
	Long: "Compare the current split with one derived from monthly spend, goal gaps\n" +
		"and income. Pass --apply main, savings or all to adopt the suggestion.",
	Args: cobra.NoArgs,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&flagOptimizeApply, "apply", "", "Adopt a suggestion: main, savings or all")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	applyMain, applySavings := false, false
	switch flagOptimizeApply {
	case "":
	case "main":
		applyMain = true
	case "savings":
		applySavings = true
	case "all":
		applyMain, applySavings = true, true
	default:
		return fmt.Errorf("invalid --apply %q: want main, savings or all", flagOptimizeApply)
	}

	return withSession(cmd, func(s *session) error {
		ctx := cmd.Context()
		st := s.budget.State()
		r := s.budget.Report()

		fmt.Println()
		fmt.Println(cli.RenderTitle("OPTIMIZE"))
		fmt.Println()

		if r.MainSuggestion == nil {
			fmt.Println("  " + cli.Muted("Set an income to get a main split suggestion."))
		} else {
			sug := r.MainSuggestion
			rows := make([][]string, 0, len(model.Categories))
			for _, c := range model.Categories {
				rows = append(rows, []string{
					c.LabelFull(),
					cli.FormatPercent(st.Main[c]),
					cli.FormatPercent(sug.Percentages[c]),
					cli.FormatPercentDelta(st.Main[c], sug.Percentages[c]),
				})
			}
			fmt.Print(cli.RenderTable(cli.Table{
				Title:   "Main",
				Headers: []string{"Category", "Current", "Suggested", "Change"},
				Rows:    rows,
			}))
			fmt.Printf("  Spend and goal needs use %s of income.\n", cli.FormatPercent(roundTenth(sug.TotalNeedPercent)))
		}
		fmt.Println()

		rows := make([][]string, 0, len(model.SavingsCategories))
		for _, sc := range model.SavingsCategories {
			rows = append(rows, []string{
				sc.LabelFull(),
				cli.FormatPercent(st.Savings[sc]),
				cli.FormatPercent(r.SavingsSuggestion[sc]),
				cli.FormatPercentDelta(st.Savings[sc], r.SavingsSuggestion[sc]),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Savings",
			Headers: []string{"Sub-account", "Current", "Suggested", "Change"},
			Rows:    rows,
		}))

		if applyMain {
			if _, err := s.budget.AdoptMainSuggestion(ctx); err != nil {
				return fmt.Errorf("cannot adopt main suggestion: %w", err)
			}
			fmt.Println("\n  " + cli.Good("Adopted main suggestion."))
		}
		if applySavings {
			s.budget.AdoptSavingsSuggestion(ctx)
			fmt.Println("\n  " + cli.Good("Adopted savings suggestion."))
		}
		return nil
	})
}
