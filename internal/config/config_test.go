package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func intPtr(v int) *int          { return &v }
func boolPtr(v bool) *bool       { return &v }
func stringPtr(v string) *string { return &v }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 32*1024, cfg.ChunkSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Recursive)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join(".lines", "history.db"), cfg.History.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigAllKeys(t *testing.T) {
	path := writeConfig(t, `
workers: 4
chunk_size: 4096
recursive: true
strict: true
follow_symlinks: true
exclude:
  - "*.log"
  - vendor/
gitignore: true
labeled: true
log_level: debug
log_dir: /tmp/lines-logs
history:
  enabled: true
  db_path: /tmp/h.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.True(t, cfg.Recursive)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.FollowSymlinks)
	assert.Equal(t, []string{"*.log", "vendor/"}, cfg.Exclude)
	assert.True(t, cfg.Gitignore)
	assert.True(t, cfg.Labeled)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/lines-logs", cfg.LogDir)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/h.db", cfg.History.DBPath)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "recursive: true\nhistory:\n  enabled: true\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Recursive)
	assert.Equal(t, 32*1024, cfg.ChunkSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join(".lines", "history.db"), cfg.History.DBPath)
}

func TestLoadConfigExplicitZero(t *testing.T) {
	path := writeConfig(t, "chunk_size: 0\nlog_level: error\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ChunkSize)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "workers: [unclosed\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lines"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lines", "config.yaml"), []byte("workers: 7\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)

	cfg, err = LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Workers)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude = []string{"*.log"}
	cfg.Strict = true

	cfg.MergeWithFlags(FlagOverrides{
		Workers:   intPtr(3),
		Recursive: boolPtr(true),
		Exclude:   []string{"build/"},
		LogLevel:  stringPtr("info"),
		Record:    boolPtr(true),
	})

	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Recursive)
	assert.True(t, cfg.Strict, "unset flag must not override the file")
	assert.Equal(t, []string{"*.log", "build/"}, cfg.Exclude)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.History.Enabled)
}

func TestMergeWithFlagsExplicitFalse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Labeled = true
	cfg.MergeWithFlags(FlagOverrides{Labeled: boolPtr(false)})
	assert.False(t, cfg.Labeled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers must be >= 0"},
		{"tiny chunk", func(c *Config) { c.ChunkSize = 16 }, "chunk_size must be 0 or >= 512"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"empty exclude", func(c *Config) { c.Exclude = []string{"ok", " "} }, "exclude[1] cannot be empty"},
		{"history without path", func(c *Config) { c.History.Enabled = true; c.History.DBPath = "" }, "history.db_path"},
		{"uppercase level ok", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
		{"zero chunk ok", func(c *Config) { c.ChunkSize = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
