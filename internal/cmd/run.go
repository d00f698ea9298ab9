package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/lines/internal/config"
	"github.com/harrison/lines/internal/counter"
	"github.com/harrison/lines/internal/display"
	"github.com/harrison/lines/internal/executor"
	"github.com/harrison/lines/internal/history"
	"github.com/harrison/lines/internal/logger"
	"github.com/harrison/lines/internal/models"
	"github.com/harrison/lines/internal/report"
	"github.com/spf13/cobra"
)

func runLines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("history") {
		n, _ := cmd.Flags().GetInt("history")
		return showHistory(cmd, cfg, n)
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	log, closeLog, err := buildLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	warnIgnoredOptions(cfg, stderr)

	c, err := counter.New(cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk size: %w", err)
	}

	engine := executor.NewEngine(executor.Options{
		Recursive:      cfg.Recursive,
		Workers:        cfg.Workers,
		Strict:         cfg.Strict,
		FollowSymlinks: cfg.FollowSymlinks,
		Exclude:        cfg.Exclude,
		UseGitignore:   cfg.Gitignore,
	}, c, log, display.NewDiagnosticPrinter(stdout))

	result := engine.Run(args)
	display.PrintTotal(stdout, result.Total, cfg.Labeled)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := report.Write(cmd.Context(), path, result); err != nil {
			return err
		}
		log.LogDebug(fmt.Sprintf("Wrote report to %s", path))
	}

	if cfg.History.Enabled {
		if err := recordRun(cmd, cfg, result); err != nil {
			return err
		}
	}

	log.LogSummary(result)

	if code := result.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// loadConfig reads the config file and applies flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cwd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, fmt.Errorf("get working directory: %w", wdErr)
		}
		cfg, err = config.LoadConfigFromDir(cwd)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.MergeWithFlags(flagOverrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides collects only the flags the user actually set.
func flagOverrides(cmd *cobra.Command) config.FlagOverrides {
	flags := cmd.Flags()
	var f config.FlagOverrides

	intFlag := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}
	boolFlag := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}
	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	f.Workers = intFlag("workers")
	f.ChunkSize = intFlag("chunk-size")
	f.Recursive = boolFlag("recursive")
	f.Strict = boolFlag("strict")
	f.FollowSymlinks = boolFlag("follow-symlinks")
	f.Gitignore = boolFlag("gitignore")
	f.Labeled = boolFlag("labeled")
	f.LogLevel = stringFlag("log-level")
	f.LogDir = stringFlag("log-dir")
	f.Record = boolFlag("record")
	f.Exclude, _ = flags.GetStringArray("exclude")

	return f
}

// buildLogger returns the console logger, fanned out to a run log file
// when a log directory is configured.
func buildLogger(cfg *config.Config, stderr io.Writer) (logger.RunLogger, func(), error) {
	console := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLoggerWithLevel(cfg.LogDir, fileLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	closeFn := func() {
		if err := fileLog.Close(); err != nil {
			console.LogWarn(fmt.Sprintf("Failed to close run log: %v", err))
		}
	}
	return logger.NewMultiLogger(console, fileLog), closeFn, nil
}

// fileLogLevel keeps run logs at info or more verbose.
func fileLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return strings.ToLower(level)
	default:
		return "info"
	}
}

// warnIgnoredOptions flags traversal options that do nothing without -r.
func warnIgnoredOptions(cfg *config.Config, out io.Writer) {
	if cfg.Recursive {
		return
	}
	var ignored []string
	if len(cfg.Exclude) > 0 {
		ignored = append(ignored, "exclude")
	}
	if cfg.Gitignore {
		ignored = append(ignored, "gitignore")
	}
	if cfg.FollowSymlinks {
		ignored = append(ignored, "follow-symlinks")
	}
	if len(ignored) > 0 {
		display.WarnTraversalOnly(ignored).Display(out)
	}
}

func recordRun(cmd *cobra.Command, cfg *config.Config, result models.RunResult) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(cmd.Context(), history.NewRunRecord(result)); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
