package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Paths      []string // Related paths (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	w.render(out, isTerminal(out))
}

func (w Warning) render(out io.Writer, colored bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Paths) > 0 {
		if len(w.Paths) == 1 {
			b.WriteString("    Affected path:\n")
		} else {
			b.WriteString("    Affected paths:\n")
		}
		for i, p := range w.Paths {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, p)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	paint(colored, color.FgYellow).Fprint(out, b.String())
}

// WarnTraversalOnly warns that traversal-only flags were given without
// recursion, so they have no effect.
func WarnTraversalOnly(flags []string) Warning {
	return Warning{
		Title:      "Traversal options ignored",
		Message:    "These options only apply when directories are expanded.",
		Paths:      flags,
		Suggestion: "Pass -r to count files inside directories.",
	}
}
