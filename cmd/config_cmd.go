package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	dbPath := config.DBPath(cfg)
	if flagDB != "" {
		dbPath = flagDB
	}
	if flagEphemeral {
		dbPath = "(in memory)"
	}
	fmt.Printf("    Database: %s\n", dbPath)
	fmt.Printf("    Locale:   %s\n", cfg.General.Locale)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:      %s\n", cfg.Serve.Addr)
	fmt.Printf("    Event buffer: %d\n", cfg.Serve.EventBuffer)
	fmt.Printf("    Refresh:      %ds\n", cfg.Serve.RefreshSeconds)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	fmt.Println("  Run `paysplit setup` to reconfigure.")
	return nil
}
