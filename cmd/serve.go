package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paysplit/internal/apiclient"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/config"
	"github.com/theirongolddev/paysplit/internal/daemon"
)

// serverRecord is written next to the pid file so `serve status` can find
// the listen address of a detached server.
type serverRecord struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

var (
	flagServeAddr         string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the budget over a local HTTP API with an SSE change stream",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and budget status",
	RunE:  runServeStatus,
}

var serveEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent changes recorded by the running server",
	Args:  cobra.NoArgs,
	RunE:  runServeEvents,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "paysplitd.pid")
	defaultLog := filepath.Join(config.DataDir(), "paysplitd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveEventsCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid serve launch mode")
	}
	if flagServeDetach {
		return startServerDetached()
	}
	return runServerForeground(cmd)
}

// serveAddr resolves the listen address from the flag, then config.
func serveAddr(cfg config.Config) string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return cfg.Serve.Addr
}

func startServerDetached() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	fmt.Println("  Check it with: paysplit serve status")
	return nil
}

func runServerForeground(cmd *cobra.Command) error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	return withSession(cmd, func(s *session) error {
		addr := serveAddr(s.cfg)
		buffer := s.cfg.Serve.EventBuffer
		if flagServeEventsBuffer > 0 {
			buffer = flagServeEventsBuffer
		}

		if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
			return fmt.Errorf("create server directory: %w", err)
		}
		pid := os.Getpid()
		if err := writePID(flagServePIDFile, pid); err != nil {
			return err
		}
		defer func() { _ = os.Remove(flagServePIDFile) }()

		rec := serverRecord{
			PID:       pid,
			Addr:      addr,
			StartedAt: time.Now(),
			DBPath:    config.DBPath(s.cfg),
		}
		if flagDB != "" {
			rec.DBPath = flagDB
		}
		if err := writeRecord(recordPath(flagServePIDFile), rec); err != nil {
			log.WithError(err).Warn("Failed to write server record")
		}
		defer func() { _ = os.Remove(recordPath(flagServePIDFile)) }()

		svc := daemon.New(daemon.Config{
			Addr:            addr,
			EventsBuffer:    buffer,
			RefreshInterval: time.Duration(s.cfg.Serve.RefreshSeconds) * time.Second,
		}, s.budget)

		fmt.Printf("  paysplit listening on http://%s\n", addr)
		fmt.Printf("  Stop with: paysplit serve stop --pid-file %s\n", flagServePIDFile)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
}

func runServeStatus(cmd *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		fmt.Println("  Server: not running (pid file not found)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	client := apiclient.New(runningServerAddr())
	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: %s\n", client.BaseURL())

	st, err := client.Status(cmd.Context())
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if st.LastChangeAt.IsZero() {
		fmt.Println("  Last change: none since start")
	} else {
		fmt.Printf("  Last change: %s\n", st.LastChangeAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Changes: %d\n", st.ChangeCount)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	fmt.Printf("  Total balance: %s\n", cli.FormatCurrencyFull(st.Summary.TotalBalance))
	fmt.Printf("  Operating balance: %s\n", cli.FormatCurrencyFull(st.Summary.OperatingBalance))
	fmt.Printf("  Runway: %s\n", cli.FormatRunway(st.Summary.RunwayMonths))
	fmt.Printf("  Forecast: %s (%s)\n", cli.Title(st.Summary.Trend.String()), st.Summary.Forecast)
	if st.LastError != "" {
		fmt.Printf("  Last save error: %s\n", st.LastError)
	}
	return nil
}

func runServeEvents(cmd *cobra.Command, _ []string) error {
	events, err := apiclient.New(runningServerAddr()).Events(cmd.Context())
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("  No changes since the server started.")
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		moved := ""
		if ev.Delta != nil {
			moved = cli.FormatCurrencyFull(ev.Delta.TotalBalance)
		}
		rows = append(rows, []string{
			strconv.FormatInt(ev.ID, 10),
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			ev.Type,
			moved,
			cli.FormatCurrencyFull(ev.Snapshot.TotalBalance),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent Changes",
		Headers: []string{"ID", "Time", "Change", "Moved", "Total"},
		Rows:    rows,
	}))
	return nil
}

// runningServerAddr resolves the address of the running server: --addr, then the
// server record, then config.
func runningServerAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	if rec, err := readRecord(recordPath(flagServePIDFile)); err == nil && rec.Addr != "" {
		return rec.Addr
	}
	if cfg, err := config.Load(); err == nil && cfg.Serve.Addr != "" {
		return cfg.Serve.Addr
	}
	return config.DefaultConfig().Serve.Addr
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServePIDFile)
			_ = os.Remove(recordPath(flagServePIDFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServerNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(recordPath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func recordPath(pidFile string) string {
	return pidFile + ".json"
}

func writeRecord(path string, rec serverRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readRecord(path string) (serverRecord, error) {
	var rec serverRecord
	//nolint:gosec // record path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}
