// Package config loads lines settings from YAML and merges them with
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinChunkSize mirrors the smallest read buffer the counter accepts.
const MinChunkSize = 512

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents lines configuration
type Config struct {
	// Workers is the size of the worker pool (0 = 2x CPU count)
	Workers int `yaml:"workers"`

	// ChunkSize is the read buffer size in bytes
	ChunkSize int `yaml:"chunk_size"`

	// Recursive enables directory descent
	Recursive bool `yaml:"recursive"`

	// Strict turns file open failures into diagnostics
	Strict bool `yaml:"strict"`

	// FollowSymlinks descends into symlinked directories
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// Exclude holds gitignore-style patterns applied during traversal
	Exclude []string `yaml:"exclude"`

	// Gitignore also loads .gitignore from each directory target
	Gitignore bool `yaml:"gitignore"`

	// Labeled prints "Total length: N" instead of the bare count
	Labeled bool `yaml:"labeled"`

	// LogLevel sets the console log level (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files in this directory when set
	LogDir string `yaml:"log_dir"`

	// History configures the run history database
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:   0,
		ChunkSize: 32 * 1024,
		LogLevel:  "warn",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(".lines", "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell "absent" apart from an explicit zero value
	type yamlHistory struct {
		Enabled *bool   `yaml:"enabled"`
		DBPath  *string `yaml:"db_path"`
	}
	type yamlConfig struct {
		Workers        *int         `yaml:"workers"`
		ChunkSize      *int         `yaml:"chunk_size"`
		Recursive      *bool        `yaml:"recursive"`
		Strict         *bool        `yaml:"strict"`
		FollowSymlinks *bool        `yaml:"follow_symlinks"`
		Exclude        []string     `yaml:"exclude"`
		Gitignore      *bool        `yaml:"gitignore"`
		Labeled        *bool        `yaml:"labeled"`
		LogLevel       *string      `yaml:"log_level"`
		LogDir         *string      `yaml:"log_dir"`
		History        *yamlHistory `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Workers != nil {
		cfg.Workers = *yamlCfg.Workers
	}
	if yamlCfg.ChunkSize != nil {
		cfg.ChunkSize = *yamlCfg.ChunkSize
	}
	if yamlCfg.Recursive != nil {
		cfg.Recursive = *yamlCfg.Recursive
	}
	if yamlCfg.Strict != nil {
		cfg.Strict = *yamlCfg.Strict
	}
	if yamlCfg.FollowSymlinks != nil {
		cfg.FollowSymlinks = *yamlCfg.FollowSymlinks
	}
	if yamlCfg.Exclude != nil {
		cfg.Exclude = yamlCfg.Exclude
	}
	if yamlCfg.Gitignore != nil {
		cfg.Gitignore = *yamlCfg.Gitignore
	}
	if yamlCfg.Labeled != nil {
		cfg.Labeled = *yamlCfg.Labeled
	}
	if yamlCfg.LogLevel != nil {
		cfg.LogLevel = *yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if h := yamlCfg.History; h != nil {
		if h.Enabled != nil {
			cfg.History.Enabled = *h.Enabled
		}
		if h.DBPath != nil {
			cfg.History.DBPath = *h.DBPath
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .lines/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".lines", "config.yaml"))
}

// FlagOverrides carries command-line values. Nil fields were not set on
// the command line and leave the configuration untouched.
type FlagOverrides struct {
	Workers        *int
	ChunkSize      *int
	Recursive      *bool
	Strict         *bool
	FollowSymlinks *bool
	Exclude        []string
	Gitignore      *bool
	Labeled        *bool
	LogLevel       *string
	LogDir         *string
	Record         *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// Exclude patterns from flags are appended to those from the file
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.ChunkSize != nil {
		c.ChunkSize = *f.ChunkSize
	}
	if f.Recursive != nil {
		c.Recursive = *f.Recursive
	}
	if f.Strict != nil {
		c.Strict = *f.Strict
	}
	if f.FollowSymlinks != nil {
		c.FollowSymlinks = *f.FollowSymlinks
	}
	if len(f.Exclude) > 0 {
		c.Exclude = append(append([]string(nil), c.Exclude...), f.Exclude...)
	}
	if f.Gitignore != nil {
		c.Gitignore = *f.Gitignore
	}
	if f.Labeled != nil {
		c.Labeled = *f.Labeled
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.Record != nil {
		c.History.Enabled = *f.Record
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	if c.ChunkSize != 0 && c.ChunkSize < MinChunkSize {
		return fmt.Errorf("chunk_size must be 0 or >= %d, got %d", MinChunkSize, c.ChunkSize)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	for i, p := range c.Exclude {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("exclude[%d] cannot be empty", i)
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
