package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
)

var percentagesCmd = &cobra.Command{
	Use:     "percentages",
	Aliases: []string{"pct"},
	Short:   "Show the main and savings split percentages",
	RunE:    runPercentages,
}

var percentagesSetCmd = &cobra.Command{
	Use:   "set <key>=<pct>...",
	Short: "Set one or more percentages",
	Long: "Set percentages by category key, e.g. `paysplit percentages set fixed=45 charity=15`.\n" +
		"Main keys: fixed, flexible, savings, charity. Savings keys: rainyDay, retirement,\n" +
		"hsa, bigPurchases. Values are clamped to 0-100; totals other than 100 are allowed.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPercentagesSet,
}

var percentagesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default percentages",
	Args:  cobra.NoArgs,
	RunE:  runPercentagesReset,
}

func init() {
	percentagesCmd.AddCommand(percentagesSetCmd, percentagesResetCmd)
	rootCmd.AddCommand(percentagesCmd)
}

func runPercentages(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		printPercentages(s.budget.State())
		return nil
	})
}

// parseAssignments resolves key=pct pairs into main and savings shares.
// Keys not named are left out so the merge keeps their current values.
func parseAssignments(args []string) (map[model.Category]float64, map[model.SavingsCategory]float64, error) {
	main := make(map[model.Category]float64)
	savings := make(map[model.SavingsCategory]float64)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("expected key=pct, got %q", arg)
		}
		pct := model.ParsePercent(value)
		if c, ok := model.ParseCategory(key); ok {
			main[c] = pct
			continue
		}
		if sc, ok := model.ParseSavingsCategory(key); ok {
			savings[sc] = pct
			continue
		}
		return nil, nil, fmt.Errorf("%w: %q", budget.ErrUnknownCategory, key)
	}
	return main, savings, nil
}

func runPercentagesSet(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		main, savings, err := parseAssignments(args)
		if err != nil {
			return err
		}
		s.budget.MergePercentages(cmd.Context(), main, savings)
		printPercentages(s.budget.State())
		return nil
	})
}

func runPercentagesReset(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		s.budget.RestoreDefaults(cmd.Context())
		printPercentages(s.budget.State())
		return nil
	})
}

func printPercentages(st model.State) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("SPLIT PERCENTAGES"))
	fmt.Println()

	mainRows := make([][]string, 0, len(model.Categories)+2)
	for _, c := range model.Categories {
		mainRows = append(mainRows, []string{c.Key(), c.LabelFull(), cli.FormatPercent(st.Main[c])})
	}
	mainRows = append(mainRows, []string{"---"}, []string{"", "Total", cli.FormatPercent(st.Main.Total())})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Main",
		Headers: []string{"Key", "Category", "Share"},
		Rows:    mainRows,
	}))
	fmt.Println()

	savingsRows := make([][]string, 0, len(model.SavingsCategories)+2)
	for _, sc := range model.SavingsCategories {
		savingsRows = append(savingsRows, []string{sc.Key(), sc.LabelFull(), cli.FormatPercent(st.Savings[sc])})
	}
	savingsRows = append(savingsRows, []string{"---"}, []string{"", "Total", cli.FormatPercent(st.Savings.Total())})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Savings",
		Headers: []string{"Key", "Sub-account", "Share of savings"},
		Rows:    savingsRows,
	}))

	printTotalsWarning(st.Main.Total(), st.Savings.Total())
}
