package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/config"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup for income, taxes and theme",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form fields. Amounts stay strings until submit so
// they go through the same parse-or-zero path as the other commands.
type setupValues struct {
	incomeType    string
	paycheck      string
	perMonth      int
	billing       string
	billingMonths int
	freelanceTax  bool
	deductTax     bool
	theme         string
}

func newSetupForm(v *setupValues) *huh.Form {
	perMonth := make([]huh.Option[int], 0, len(model.PaychecksPerMonthOptions))
	for _, n := range model.PaychecksPerMonthOptions {
		perMonth = append(perMonth, huh.NewOption(strconv.Itoa(n), n))
	}
	billingMonths := make([]huh.Option[int], 0, len(model.BillingMonthOptions))
	for _, n := range model.BillingMonthOptions {
		billingMonths = append(billingMonths, huh.NewOption(fmt.Sprintf("%d months", n), n))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	isRegular := func() bool { return v.incomeType == string(model.Regular) }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How are you paid?").
				Options(
					huh.NewOption("Regular paychecks", string(model.Regular)),
					huh.NewOption("Irregular (freelance or contract)", string(model.Irregular)),
				).
				Value(&v.incomeType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Paycheck amount").
				Placeholder("2,000").
				Value(&v.paycheck).
				Validate(model.ValidateAmount),
			huh.NewSelect[int]().
				Title("Paychecks per month").
				Options(perMonth...).
				Value(&v.perMonth),
			huh.NewConfirm().
				Title("Withhold 33% from paychecks for taxes?").
				Value(&v.deductTax),
		).WithHideFunc(func() bool { return !isRegular() }),
		huh.NewGroup(
			huh.NewInput().
				Title("Expected monthly billing").
				Placeholder("6,000").
				Value(&v.billing).
				Validate(model.ValidateAmount),
			huh.NewSelect[int]().
				Title("Expected contract length").
				Options(billingMonths...).
				Value(&v.billingMonths),
			huh.NewConfirm().
				Title("Withhold 33% from freelance billing for taxes?").
				Value(&v.freelanceTax),
		).WithHideFunc(isRegular),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.theme),
		),
	)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		st := s.budget.State()
		in := st.Income

		v := setupValues{
			incomeType:    string(in.Type),
			perMonth:      in.PaychecksPerMonth,
			billingMonths: in.ExpectedBillingMonths,
			freelanceTax:  in.FreelanceDeductTax,
			deductTax:     st.DeductTax,
			theme:         s.cfg.Appearance.Theme,
		}
		if !in.RegularPaycheck.IsZero() {
			v.paycheck = in.RegularPaycheck.String()
		}
		if !in.ExpectedMonthlyBilling.IsZero() {
			v.billing = in.ExpectedMonthlyBilling.String()
		}

		if err := newSetupForm(&v).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Setup cancelled.")
				return nil
			}
			return fmt.Errorf("setup form: %w", err)
		}

		if t, ok := model.ParseIncomeType(v.incomeType); ok {
			in.Type = t
		}
		in.RegularPaycheck = model.ParseAmount(v.paycheck)
		in.PaychecksPerMonth = v.perMonth
		in.ExpectedMonthlyBilling = model.ParseAmount(v.billing)
		in.ExpectedBillingMonths = v.billingMonths
		in.FreelanceDeductTax = v.freelanceTax

		ctx := cmd.Context()
		in = s.budget.SetIncome(ctx, in)
		if in.Type == model.Regular && v.deductTax != st.DeductTax {
			s.budget.SetDeductTax(ctx, v.deductTax)
		}

		s.cfg.Appearance.Theme = v.theme
		if err := config.Save(s.cfg); err != nil {
			fmt.Println("  " + cli.Warn(fmt.Sprintf("Could not save config: %s", err)))
		}

		printIncome(in)
		fmt.Println()
		fmt.Println("  " + cli.Good("All set!") + " Run `paysplit setup` anytime to reconfigure.")
		return nil
	})
}
