package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/config"
	"github.com/theirongolddev/paysplit/internal/tui"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		theme.SetActive(s.cfg.Appearance.Theme)

		// Log lines would tear the alt screen; save errors show in the status bar.
		if f, err := openTUILog(); err == nil {
			defer f.Close()
			log.SetOutput(f)
		} else {
			log.SetOutput(io.Discard)
		}
		defer log.SetOutput(os.Stderr)

		// Force TrueColor so background fills always emit ANSI codes.
		lipgloss.SetColorProfile(termenv.TrueColor)

		app := tui.NewApp(cmd.Context(), s.budget)
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}

func openTUILog() (*os.File, error) {
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
