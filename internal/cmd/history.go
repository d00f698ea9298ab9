package cmd

import (
	"fmt"

	"github.com/harrison/lines/internal/config"
	"github.com/harrison/lines/internal/history"
	"github.com/spf13/cobra"
)

func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath, err := config.ResolveHistoryPath(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve history path: %w", err)
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// showHistory prints the last n recorded runs, newest first.
func showHistory(cmd *cobra.Command, cfg *config.Config, n int) error {
	if n <= 0 {
		return fmt.Errorf("--history must be > 0, got %d", n)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(cmd.Context(), n)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No recorded runs")
		return nil
	}
	for _, r := range records {
		fmt.Fprintln(out, r.Line())
	}
	return nil
}
