package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/cli"
)

var flagClearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Zero every account and the income amounts",
	Long:  "Zero every account balance, goal and spend and the stored income amounts.\nPercentages and the income type are kept.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if !flagClearYes {
		fmt.Print("  Clear all balances, goals and income? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("  Aborted.")
			return nil
		}
	}

	return withSession(cmd, func(s *session) error {
		s.budget.ClearAll(cmd.Context())
		fmt.Println("  " + cli.Good("Cleared."))
		return nil
	})
}
