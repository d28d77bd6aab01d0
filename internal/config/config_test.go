package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/storage"
)

func TestDefaults(t *testing.T) {
	v := New()
	v.Set("data_dir", t.TempDir())

	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
	assert.False(t, cfg.Debug)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.AutoSave.Interval)
	assert.Equal(t, 50, cfg.Reminder.InboxSize)
	assert.Empty(t, cfg.Reminder.PushURLs)
	assert.Equal(t, 10*time.Second, cfg.Reminder.PushTimeout)
	assert.False(t, cfg.Search.IncludeEncrypted)
	assert.Equal(t, 30*time.Minute, cfg.Crypto.KeyCacheTTL)
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTEKEEPER_DATA_DIR", dir)
	t.Setenv("NOTEKEEPER_PORT", "9191")
	t.Setenv("NOTEKEEPER_STORAGE_DRIVER", "sqlite")
	t.Setenv("NOTEKEEPER_AUTOSAVE_INTERVAL", "45s")
	t.Setenv("NOTEKEEPER_SEARCH_INCLUDE_ENCRYPTED", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 45*time.Second, cfg.AutoSave.Interval)
	assert.True(t, cfg.Search.IncludeEncrypted)
}

func TestConfigFileInDataDir(t *testing.T) {
	dir := t.TempDir()
	yaml := "port: 9000\nreminder:\n  push_urls:\n    - generic://localhost/hook\n  inbox_size: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName), []byte(yaml), 0600))

	v := New()
	v.Set("data_dir", dir)
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5, cfg.Reminder.InboxSize)
	assert.Equal(t, []string{"generic://localhost/hook"}, cfg.Reminder.PushURLs)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		v := New()
		v.Set("data_dir", t.TempDir())
		cfg, err := Load(v, "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"port", func(c *Config) { c.Port = 70000 }},
		{"autosave", func(c *Config) { c.AutoSave.Interval = 10 * time.Millisecond }},
		{"inbox", func(c *Config) { c.Reminder.InboxSize = 0 }},
		{"push timeout", func(c *Config) { c.Reminder.PushTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := base()
	cfg.Storage.Driver = "postgres"
	assert.ErrorIs(t, cfg.Validate(), storage.ErrUnknownDriver)
}
