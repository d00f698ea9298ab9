package models

import "fmt"

// WorkKind identifies what a scheduled WorkItem does.
type WorkKind int

const (
	// WorkClassifyTarget resolves a top-level target into further work.
	WorkClassifyTarget WorkKind = iota
	// WorkCountFile streams one file and counts its newline bytes.
	WorkCountFile
	// WorkExpandDirectory lists one directory and emits work for its entries.
	WorkExpandDirectory
)

// String returns the string representation of WorkKind.
func (k WorkKind) String() string {
	switch k {
	case WorkClassifyTarget:
		return "classify"
	case WorkCountFile:
		return "count"
	case WorkExpandDirectory:
		return "expand"
	default:
		return "unknown"
	}
}

// WorkItem is one unit of scheduled execution.
// It is consumed exactly once by a worker and never re-queued.
type WorkItem struct {
	Kind WorkKind
	Path string
	// Root is the top-level directory target this item descends from.
	// Empty for targets and for files named directly on the command line.
	Root string
}

// ClassifyTarget creates a WorkItem that classifies a top-level target.
func ClassifyTarget(path string) WorkItem {
	return WorkItem{Kind: WorkClassifyTarget, Path: path}
}

// CountFile creates a WorkItem that counts the newlines of a file.
func CountFile(path, root string) WorkItem {
	return WorkItem{Kind: WorkCountFile, Path: path, Root: root}
}

// ExpandDirectory creates a WorkItem that lists a directory.
func ExpandDirectory(path, root string) WorkItem {
	return WorkItem{Kind: WorkExpandDirectory, Path: path, Root: root}
}

// String returns a short human-readable form, e.g. "expand(src/)".
func (w WorkItem) String() string {
	return fmt.Sprintf("%s(%s)", w.Kind, w.Path)
}
