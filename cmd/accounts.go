package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/goals"
	"github.com/theirongolddev/paysplit/internal/model"
)

var (
	flagAcctBalance string
	flagAcctGoal    string
	flagAcctSpend   string
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List account balances, goals and monthly spend",
	RunE:  runAccounts,
}

var accountsSetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Set an account's balance, goal or monthly spend",
	Long: "Set fields on one account. Keys: fixed, flexible, charity, rainyDay,\n" +
		"retirement, hsa, bigPurchases. Amounts accept $ and thousands separators;\n" +
		"anything unparseable is stored as zero.",
	Args: cobra.ExactArgs(1),
	RunE: runAccountsSet,
}

func init() {
	accountsSetCmd.Flags().StringVar(&flagAcctBalance, "balance", "", "Current balance")
	accountsSetCmd.Flags().StringVar(&flagAcctGoal, "goal", "", "Goal balance (0 clears the goal)")
	accountsSetCmd.Flags().StringVar(&flagAcctSpend, "spend", "", "Recurring monthly spend")
	accountsCmd.AddCommand(accountsSetCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		printAccounts(s.budget.State())
		return nil
	})
}

func runAccountsSet(cmd *cobra.Command, args []string) error {
	k, err := budget.ParseAccount(args[0])
	if err != nil {
		return err
	}

	var u budget.AccountUpdate
	if cmd.Flags().Changed("balance") {
		u.Balance = amountPtr(flagAcctBalance)
	}
	if cmd.Flags().Changed("goal") {
		u.Goal = amountPtr(flagAcctGoal)
	}
	if cmd.Flags().Changed("spend") {
		u.MonthlySpend = amountPtr(flagAcctSpend)
	}
	if u.Empty() {
		return fmt.Errorf("nothing to set: pass --balance, --goal or --spend")
	}

	return withSession(cmd, func(s *session) error {
		acct := s.budget.UpdateAccount(cmd.Context(), k, u)
		fmt.Printf("\n  %s: balance %s, goal %s, spend %s/mo\n",
			k.Label(),
			cli.FormatCurrencyFull(acct.Balance),
			goalString(acct),
			cli.FormatCurrencyFull(acct.MonthlySpend))
		return nil
	})
}

func amountPtr(s string) *decimal.Decimal {
	d := model.ParseAmount(s)
	return &d
}

func goalString(a model.Account) string {
	if !a.HasGoal() {
		return "none"
	}
	return cli.FormatCurrency(a.Goal)
}

func printAccounts(st model.State) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("ACCOUNTS"))
	fmt.Println()

	rows := make([][]string, 0, len(model.AccountKeys)+2)
	total := decimal.Zero
	for _, k := range model.AccountKeys {
		acct := st.Accounts[k]
		total = total.Add(acct.Balance)
		progress := ""
		if acct.HasGoal() {
			progress = cli.FormatPercent(roundTenth(acct.Progress()))
		}
		rows = append(rows, []string{
			k.Key(),
			k.Label(),
			cli.FormatCurrency(acct.Balance),
			goalString(acct),
			progress,
			cli.FormatCurrency(acct.MonthlySpend),
			goals.MonthsToGoal(k, st).Message(),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", cli.FormatCurrency(total), "", "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Key", "Account", "Balance", "Goal", "Progress", "Spend/mo", "To goal"},
		Rows:    rows,
	}))
}
