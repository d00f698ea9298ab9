// Package cmd implements the lines command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError carries a process exit status out of cobra. Message is
// optional; when empty nothing extra is printed.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCommand creates and returns the root cobra command for lines
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines [flags] <PATH>...",
		Short: "Count newline bytes across files and directory trees in parallel",
		Long: `lines counts newline bytes in every file named on the command line.

With -r, directory targets are expanded recursively and every regular file
below them is counted. Work is spread over a pool of workers; the result is
a single total printed on stdout. Missing paths and unreadable directories
are reported as they are found and make the command exit with status 1.`,
		Version: Version,
		Args:    validateArgs,
		RunE:    runLines,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints errors so ExitError can stay quiet
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolP("recursive", "r", false, "Descend into directory targets")
	flags.IntP("workers", "j", 0, "Number of workers (0 = 2x CPU count)")
	flags.Int("chunk-size", 0, "Read chunk size in bytes (0 = 32768)")
	flags.Bool("strict", false, "Report unreadable files and fail the run")
	flags.Bool("follow-symlinks", false, "Descend into symlinked directories")
	flags.StringArrayP("exclude", "e", nil, "Gitignore-style pattern to skip during traversal (repeatable)")
	flags.Bool("gitignore", false, "Also apply .gitignore found in each directory target")
	flags.Bool("labeled", false, `Print "Total length: N" instead of the bare count`)
	flags.String("config", "", "Path to config file (default: .lines/config.yaml)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-dir", "", "Directory for per-run log files")
	flags.String("report", "", "Write a YAML run report to this file")
	flags.Bool("record", false, "Record the run in the history database")
	flags.Int("history", 0, "Print the last N recorded runs and exit")

	return cmd
}

// validateArgs requires at least one PATH unless --history was given.
func validateArgs(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("history") {
		if len(args) > 0 {
			return fmt.Errorf("--history does not take PATH arguments")
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("requires at least 1 PATH argument")
	}
	return nil
}
