package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the lines home directory.
const HomeEnv = "LINES_HOME"

// GetHome returns the lines home directory
// Priority order:
//   1. LINES_HOME environment variable (if set)
//   2. .lines in the current working directory (fallback)
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".lines")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create lines home directory: %w", err)
	}

	return home, nil
}

// ResolveHistoryPath makes a relative history.db_path absolute. Files
// directly under ".lines/" are placed in the home directory; other relative
// paths resolve against the working directory.
func ResolveHistoryPath(dbPath string) (string, error) {
	if filepath.IsAbs(dbPath) {
		return dbPath, nil
	}

	rel := filepath.Clean(dbPath)
	dir, file := filepath.Split(rel)
	if filepath.Clean(dir) != ".lines" {
		return filepath.Abs(rel)
	}

	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, file), nil
}
