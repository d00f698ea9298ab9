package models

import "time"

// RunResult is the snapshot of one invocation taken after every
// scheduled WorkItem has completed.
type RunResult struct {
	RunID        string        // Unique identifier of the run
	Targets      []string      // Targets as supplied by the user
	Total        int64         // Sum of newline bytes over every counted file
	Failed       bool          // Sticky error flag at the end of the run
	FilesCounted int64         // Number of files successfully counted
	DirsExpanded int64         // Number of directories successfully listed
	Diagnostics  []Diagnostic  // Every diagnostic emitted, in emission order
	StartedAt    time.Time     // When the run started
	Duration     time.Duration // Wall time from start to full join
}

// ExitCode translates the sticky error flag into a process exit status.
func (r RunResult) ExitCode() int {
	if r.Failed {
		return 1
	}
	return 0
}
