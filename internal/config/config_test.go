package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Appearance.Theme = "tokyo-night"
	cfg.Serve.Addr = ":9000"
	cfg.General.DBPath = "/tmp/budget.db"
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "flexoki-dark", cfg.Appearance.Theme)
	assert.Equal(t, 200, cfg.Serve.EventBuffer)
	assert.Equal(t, 2, cfg.Serve.RefreshSeconds)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestDBPathPrecedence(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("PAYSPLIT_DB", "")

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(data, "paysplit", "paysplit.db"), DBPath(cfg))

	cfg.General.DBPath = "/srv/budget.db"
	assert.Equal(t, "/srv/budget.db", DBPath(cfg))

	t.Setenv("PAYSPLIT_DB", "/env/budget.db")
	assert.Equal(t, "/env/budget.db", DBPath(cfg))
}
