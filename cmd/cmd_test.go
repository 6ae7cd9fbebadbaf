package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/goals"
	"github.com/theirongolddev/paysplit/internal/model"
)

func TestParseAssignments(t *testing.T) {
	main, savings, err := parseAssignments([]string{"fixed=55", "hsa=20%"})
	require.NoError(t, err)
	assert.Equal(t, map[model.Category]float64{model.Fixed: 55}, main)
	assert.Equal(t, map[model.SavingsCategory]float64{model.HSA: 20}, savings)

	main, savings, err = parseAssignments([]string{"retirement=10"})
	require.NoError(t, err)
	assert.Empty(t, main)
	assert.Len(t, savings, 1)

	_, _, err = parseAssignments([]string{"fixed"})
	assert.EqualError(t, err, `expected key=pct, got "fixed"`)

	_, _, err = parseAssignments([]string{"vacation=5"})
	assert.ErrorIs(t, err, budget.ErrUnknownCategory)
}

func TestGoalOutcome(t *testing.T) {
	st := model.DefaultState()
	st.Income.RegularPaycheck = decimal.NewFromInt(1000)
	st.Accounts[model.FixedAccount].Goal = decimal.NewFromInt(1000)
	st.Accounts[model.HSAAccount].Goal = decimal.NewFromInt(100)

	name, out, err := goalOutcome("fixed", st)
	require.NoError(t, err)
	assert.Equal(t, model.Fixed.LabelFull(), name)
	assert.Equal(t, goals.Finite, out.Status)

	_, out, err = goalOutcome("savings", st)
	require.NoError(t, err)
	assert.Equal(t, goals.Unknown, out.Status)

	name, out, err = goalOutcome("hsa", st)
	require.NoError(t, err)
	assert.Equal(t, model.HSAAccount.Label(), name)
	assert.Equal(t, goals.Finite, out.Status)

	_, _, err = goalOutcome("vacation", st)
	assert.ErrorIs(t, err, budget.ErrUnknownAccount)
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", ":9000"}, got)
}

func TestServerRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "paysplitd.pid")

	require.NoError(t, writePID(pidFile, 4242))
	pid, err := readPID(pidFile)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	rec := serverRecord{PID: 4242, Addr: "127.0.0.1:9999", StartedAt: time.Unix(1700000000, 0).UTC(), DBPath: "/tmp/x.db"}
	require.NoError(t, writeRecord(recordPath(pidFile), rec))
	got, err := readRecord(recordPath(pidFile))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("nope\n"), 0o600))
	_, err := readPID(pidFile)
	assert.Error(t, err)
}

func TestEnsureServerNotRunning(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "paysplitd.pid")
	assert.NoError(t, ensureServerNotRunning(pidFile), "no pid file")

	require.NoError(t, writePID(pidFile, os.Getpid()))
	assert.ErrorContains(t, ensureServerNotRunning(pidFile), "already running")
}
