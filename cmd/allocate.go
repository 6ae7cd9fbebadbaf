package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/allocation"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
)

var (
	flagAllocTax   bool
	flagAllocApply bool
	flagAllocOnce  bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate [amount]",
	Short: "Preview or apply a paycheck split",
	Long: "Preview how a paycheck splits across the categories. With an amount the\n" +
		"paycheck is stored first; without one the stored paycheck is used.\n" +
		"--apply credits the split to account balances and clears the stored paycheck.\n" +
		"--once credits a one-off payment without touching the stored paycheck.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().BoolVar(&flagAllocTax, "tax", false, "Withhold 33% for taxes (defaults to the freelance tax setting for irregular income)")
	allocateCmd.Flags().BoolVar(&flagAllocApply, "apply", false, "Credit the split to account balances")
	allocateCmd.Flags().BoolVar(&flagAllocOnce, "once", false, "Credit a one-off payment immediately")
	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		ctx := cmd.Context()
		st := s.budget.State()

		deductTax := st.DeductTax
		if cmd.Flags().Changed("tax") {
			deductTax = flagAllocTax
		} else if len(args) == 1 && st.Income.Type == model.Irregular {
			deductTax = st.Income.FreelanceDeductTax
		}

		var ev allocation.Event
		switch {
		case flagAllocOnce:
			if len(args) == 0 {
				return errors.New("--once needs an amount")
			}
			ev = s.budget.Allocate(ctx, model.ParseAmount(args[0]), deductTax)
		default:
			if len(args) == 1 {
				s.budget.SetPaycheck(ctx, model.ParseAmount(args[0]), deductTax)
			} else if cmd.Flags().Changed("tax") {
				s.budget.SetDeductTax(ctx, deductTax)
			}
			if flagAllocApply {
				ev = s.budget.ApplyPaycheck(ctx)
			} else {
				ev = s.budget.PreviewPaycheck()
			}
		}

		printAllocation(ev)

		applied := flagAllocOnce || flagAllocApply
		switch {
		case ev.Net.IsZero():
			fmt.Println("\n  Nothing to allocate.")
		case applied:
			fmt.Println("\n  " + cli.Good("Balances updated."))
		default:
			fmt.Println("\n  " + cli.Muted("Preview only. Run with --apply to credit balances."))
		}
		return nil
	})
}

func printAllocation(ev allocation.Event) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("PAYCHECK SPLIT"))
	fmt.Println()

	rows := [][]string{
		{"Gross", cli.FormatCurrencyFull(ev.Gross)},
	}
	if ev.DeductTax {
		rows = append(rows, []string{"Tax withheld (33%)", cli.FormatCurrencyFull(ev.TaxWithheld)})
	}
	rows = append(rows, []string{"Net", cli.FormatCurrencyFull(ev.Net)}, []string{"---"})
	for _, c := range model.Categories {
		rows = append(rows, []string{c.LabelFull(), cli.FormatCurrencyFull(ev.MainAmount(c))})
		if c == model.Savings {
			for _, sc := range model.SavingsCategories {
				rows = append(rows, []string{"  " + sc.Label(), cli.FormatCurrencyFull(ev.SavingsAmount(sc))})
			}
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Bucket", "Amount"},
		Rows:    rows,
	}))
}
