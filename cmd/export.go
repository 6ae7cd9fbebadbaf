package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagExportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the budget state to stdout as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		view := s.budget.View()
		switch flagExportFormat {
		case "yaml", "yml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("encoding yaml: %w", err)
			}
			return enc.Close()
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("encoding json: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("invalid format %q: want yaml or json", flagExportFormat)
		}
	})
}
