package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/harrison/lines/internal/models"
)

// ProgramName prefixes every diagnostic line.
const ProgramName = "lines"

// DiagnosticPrinter writes one line per diagnostic. Lines from concurrent
// workers never interleave.
type DiagnosticPrinter struct {
	out   io.Writer
	prog  string
	color bool
	mu    sync.Mutex
	count int
}

// NewDiagnosticPrinter creates a printer for out. Color is enabled when out
// is a terminal.
func NewDiagnosticPrinter(out io.Writer) *DiagnosticPrinter {
	return &DiagnosticPrinter{
		out:   out,
		prog:  ProgramName,
		color: isTerminal(out),
	}
}

// WithColor forces color on or off.
func (p *DiagnosticPrinter) WithColor(enabled bool) *DiagnosticPrinter {
	p.color = enabled
	return p
}

// Emit prints "<prog>: <path> <message>".
func (p *DiagnosticPrinter) Emit(d models.Diagnostic) {
	if p == nil || p.out == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	if !p.color {
		fmt.Fprintln(p.out, d.Format(p.prog))
		return
	}

	prefix := paint(true, color.FgRed, color.Bold).Sprintf("%s:", p.prog)
	fmt.Fprintf(p.out, "%s %s %s\n", prefix, d.Path, d.Message())
}

// Count returns how many diagnostics were printed.
func (p *DiagnosticPrinter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
