// Package cmd implements the paysplit CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/buildinfo"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/config"
	"github.com/theirongolddev/paysplit/internal/store"
)

var (
	flagDB        string
	flagLogLevel  string
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:          "paysplit",
	Short:        "Paycheck allocation and budget runway CLI",
	Long:         "Split each paycheck across bills, spending, savings and charity, and track runway and goals.",
	SilenceUsage: true,
	Version:      buildinfo.String(),
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Path to the budget database (overrides config and PAYSPLIT_DB)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep state in memory only")
}

// session bundles what a command needs to read or change the budget.
type session struct {
	cfg    config.Config
	budget *budget.Service
	close  func()
}

// openSession loads config, applies logging and locale settings, and opens
// the budget store.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if err := setupLogging(level); err != nil {
		return nil, err
	}
	if err := cli.SetLocale(cfg.General.Locale); err != nil {
		log.WithError(err).Warn("Ignoring configured locale")
	}

	var (
		kv      store.KV
		closeFn = func() {}
	)
	if flagEphemeral {
		kv = store.NewMemory()
	} else {
		path := config.DBPath(cfg)
		if flagDB != "" {
			path = flagDB
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		log.WithField("path", path).Debug("Opened budget store")
		kv = db
		closeFn = func() { _ = db.Close() }
	}

	svc, err := budget.Open(ctx, kv)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &session{cfg: cfg, budget: svc, close: closeFn}, nil
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}
