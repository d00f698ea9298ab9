// Package report writes a YAML summary of a run to disk.
//
// Reports are replaced atomically under an advisory file lock so that
// concurrent invocations pointed at the same file never produce a torn
// document.
package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harrison/lines/internal/models"
	"gopkg.in/yaml.v3"
)

// DiagnosticEntry is one diagnostic in a report.
type DiagnosticEntry struct {
	Kind    string `yaml:"kind"`
	Path    string `yaml:"path"`
	Message string `yaml:"message"`
	Error   string `yaml:"error,omitempty"`
}

// Report is the on-disk form of a run.
type Report struct {
	RunID        string            `yaml:"run_id"`
	Targets      []string          `yaml:"targets"`
	Total        int64             `yaml:"total"`
	Failed       bool              `yaml:"failed"`
	ExitCode     int               `yaml:"exit_code"`
	FilesCounted int64             `yaml:"files_counted"`
	DirsExpanded int64             `yaml:"dirs_expanded"`
	Diagnostics  []DiagnosticEntry `yaml:"diagnostics"`
	StartedAt    time.Time         `yaml:"started_at"`
	Duration     string            `yaml:"duration"`
}

// FromResult converts a run result into a report.
func FromResult(result models.RunResult) Report {
	r := Report{
		RunID:        result.RunID,
		Targets:      result.Targets,
		Total:        result.Total,
		Failed:       result.Failed,
		ExitCode:     result.ExitCode(),
		FilesCounted: result.FilesCounted,
		DirsExpanded: result.DirsExpanded,
		Diagnostics:  make([]DiagnosticEntry, 0, len(result.Diagnostics)),
		StartedAt:    result.StartedAt.UTC(),
		Duration:     result.Duration.String(),
	}
	for _, d := range result.Diagnostics {
		entry := DiagnosticEntry{
			Kind:    string(d.Kind),
			Path:    d.Path,
			Message: d.Message(),
		}
		if d.Err != nil {
			entry.Error = d.Err.Error()
		}
		r.Diagnostics = append(r.Diagnostics, entry)
	}
	return r
}

// Marshal renders the report as YAML.
func (r Report) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Write stores the report for result at path.
func Write(ctx context.Context, path string, result models.RunResult) error {
	data, err := FromResult(result).Marshal()
	if err != nil {
		return err
	}
	if err := lockAndWrite(ctx, path, data); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// Read loads a report previously written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
