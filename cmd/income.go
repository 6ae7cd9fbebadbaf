package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
)

var (
	flagIncomeType          string
	flagIncomePaycheck      string
	flagIncomePerMonth      int
	flagIncomeBilling       string
	flagIncomeBillingMonths int
	flagIncomeFreelanceTax  bool
)

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Show the income profile",
	RunE:  runIncome,
}

var incomeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the income profile",
	Args:  cobra.NoArgs,
	RunE:  runIncomeSet,
}

func init() {
	f := incomeSetCmd.Flags()
	f.StringVar(&flagIncomeType, "type", "", "Income type: regular or irregular")
	f.StringVar(&flagIncomePaycheck, "paycheck", "", "Regular paycheck amount")
	f.IntVar(&flagIncomePerMonth, "per-month", 0, "Paychecks per month (1-4)")
	f.StringVar(&flagIncomeBilling, "billing", "", "Expected monthly billing for irregular income")
	f.IntVar(&flagIncomeBillingMonths, "billing-months", 0, "Expected contract length in months")
	f.BoolVar(&flagIncomeFreelanceTax, "freelance-tax", true, "Withhold 33% from freelance billing")
	incomeCmd.AddCommand(incomeSetCmd)
	rootCmd.AddCommand(incomeCmd)
}

func runIncome(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		printIncome(s.budget.State().Income)
		return nil
	})
}

func runIncomeSet(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	var incomeType model.IncomeType
	if flags.Changed("type") {
		t, ok := model.ParseIncomeType(flagIncomeType)
		if !ok {
			return fmt.Errorf("invalid income type %q: want regular or irregular", flagIncomeType)
		}
		incomeType = t
	}
	if flags.Changed("per-month") && !slices.Contains(model.PaychecksPerMonthOptions, flagIncomePerMonth) {
		return fmt.Errorf("invalid paychecks per month %d: want 1-4", flagIncomePerMonth)
	}
	if flags.Changed("billing-months") && flagIncomeBillingMonths < 1 {
		return fmt.Errorf("invalid billing months %d: must be at least 1", flagIncomeBillingMonths)
	}

	return withSession(cmd, func(s *session) error {
		in := s.budget.UpdateIncome(cmd.Context(), func(cur *model.Income) {
			if flags.Changed("type") {
				cur.Type = incomeType
			}
			if flags.Changed("paycheck") {
				cur.RegularPaycheck = model.ParseAmount(flagIncomePaycheck)
			}
			if flags.Changed("per-month") {
				cur.PaychecksPerMonth = flagIncomePerMonth
			}
			if flags.Changed("billing") {
				cur.ExpectedMonthlyBilling = model.ParseAmount(flagIncomeBilling)
			}
			if flags.Changed("billing-months") {
				cur.ExpectedBillingMonths = flagIncomeBillingMonths
			}
			if flags.Changed("freelance-tax") {
				cur.FreelanceDeductTax = flagIncomeFreelanceTax
			}
		})
		printIncome(in)
		return nil
	})
}

func printIncome(in model.Income) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("INCOME"))
	fmt.Println()

	rows := [][]string{
		{"Type", cli.Title(string(in.Type))},
	}
	if in.Type == model.Irregular {
		rows = append(rows,
			[]string{"Expected billing", cli.FormatCurrency(in.ExpectedMonthlyBilling) + "/mo"},
			[]string{"Freelance tax (33%)", yesNo(in.FreelanceDeductTax)},
			[]string{"Expected net", cli.FormatCurrency(in.ExpectedMonthlyNet()) + "/mo"},
			[]string{"Contract length", fmt.Sprintf("%d mo", in.ExpectedBillingMonths)},
			[]string{"Contract net", cli.FormatCurrency(in.ExpectedContractNet())},
		)
	} else {
		rows = append(rows,
			[]string{"Paycheck", cli.FormatCurrency(in.RegularPaycheck)},
			[]string{"Paychecks per month", fmt.Sprintf("%d", in.PaychecksPerMonth)},
		)
	}
	rows = append(rows, []string{"---"}, []string{"Monthly income", cli.FormatCurrency(in.MonthlyIncome())})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
