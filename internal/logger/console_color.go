package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/lines/internal/models"
)

// colorScheme defines consistent colors for summary metrics.
// Green: counted work, Red: diagnostics, Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatSummary formats run metrics without color.
// Format: "total: N, files: N, dirs: N, diagnostics: N"
func formatSummary(result models.RunResult) string {
	return fmt.Sprintf("total: %d, files: %d, dirs: %d, diagnostics: %d",
		result.Total, result.FilesCounted, result.DirsExpanded, len(result.Diagnostics))
}

// formatColorizedSummary formats run metrics with color coding.
// Diagnostics are red when present so failed runs stand out.
func formatColorizedSummary(result models.RunResult) string {
	scheme := newColorScheme()
	parts := []string{
		fmt.Sprintf("%s: %s", scheme.label.Sprint("total"), scheme.success.Sprintf("%d", result.Total)),
		fmt.Sprintf("%s: %s", scheme.label.Sprint("files"), scheme.value.Sprintf("%d", result.FilesCounted)),
		fmt.Sprintf("%s: %s", scheme.label.Sprint("dirs"), scheme.value.Sprintf("%d", result.DirsExpanded)),
	}

	diagCount := len(result.Diagnostics)
	if diagCount > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.fail.Sprint("diagnostics"), scheme.fail.Sprintf("%d", diagCount)))
	} else {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.label.Sprint("diagnostics"), scheme.value.Sprint("0")))
	}

	return strings.Join(parts, ", ")
}
