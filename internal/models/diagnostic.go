package models

import "fmt"

// DiagnosticKind classifies a local failure reported to the user.
type DiagnosticKind string

// Diagnostic kinds
const (
	MissingTarget           DiagnosticKind = "missing_target"
	RejectedDirectory       DiagnosticKind = "rejected_directory"
	SubdirectoryReadFailure DiagnosticKind = "subdirectory_read_failure"
	FileOpenFailure         DiagnosticKind = "file_open_failure"
)

// Message returns the fixed user-facing text for the kind.
func (k DiagnosticKind) Message() string {
	switch k {
	case MissingTarget:
		return "No such file or directory"
	case RejectedDirectory:
		return "Is a directory"
	case SubdirectoryReadFailure:
		return "Cannot read directory"
	case FileOpenFailure:
		return "Cannot open file"
	default:
		return "Unknown error"
	}
}

// Diagnostic is an immutable (kind, path) pair emitted for each
// classification or traversal failure.
type Diagnostic struct {
	Kind DiagnosticKind
	Path string
	Err  error // Underlying filesystem error (optional)
}

// Message returns the user-facing text for the diagnostic.
func (d Diagnostic) Message() string {
	return d.Kind.Message()
}

// Format renders the diagnostic line printed to the user.
// Format: "<prog>: <path> <message>"
func (d Diagnostic) Format(prog string) string {
	return fmt.Sprintf("%s: %s %s", prog, d.Path, d.Message())
}

// Error implements the error interface so diagnostics can travel as errors.
func (d Diagnostic) Error() string {
	if d.Err != nil {
		return fmt.Sprintf("%s %s: %v", d.Path, d.Message(), d.Err)
	}
	return fmt.Sprintf("%s %s", d.Path, d.Message())
}

// Unwrap returns the underlying error for error wrapping support.
func (d Diagnostic) Unwrap() error {
	return d.Err
}
