package executor

import (
	"sync"
	"sync/atomic"

	"github.com/harrison/lines/internal/models"
)

// DiagnosticSink receives every diagnostic as it is reported.
// Emit is called with the aggregator's emit lock held, so implementations
// never see concurrent calls from one Aggregator.
type DiagnosticSink interface {
	Emit(d models.Diagnostic)
}

// Aggregator is the per-run shared state: the accumulated newline total,
// the sticky error flag and the diagnostics reported along the way.
// It is safe for unbounded concurrent use.
type Aggregator struct {
	total        atomic.Int64
	failed       atomic.Bool
	filesCounted atomic.Int64
	dirsExpanded atomic.Int64

	mu          sync.Mutex
	sink        DiagnosticSink
	diagnostics []models.Diagnostic
}

// NewAggregator creates an Aggregator. sink may be nil.
func NewAggregator(sink DiagnosticSink) *Aggregator {
	return &Aggregator{sink: sink}
}

// Add atomically increases the accumulated total by n.
// Negative values are ignored so the total stays monotonically non-decreasing.
func (a *Aggregator) Add(n int64) {
	if n <= 0 {
		return
	}
	a.total.Add(n)
}

// MarkError sets the sticky error flag. It is idempotent and cannot be undone.
func (a *Aggregator) MarkError() {
	a.failed.Store(true)
}

// Report records d, forwards it to the sink and marks the run as failed.
func (a *Aggregator) Report(d models.Diagnostic) {
	a.MarkError()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.diagnostics = append(a.diagnostics, d)
	if a.sink != nil {
		a.sink.Emit(d)
	}
}

// fileCounted records one successfully counted file and its newlines.
func (a *Aggregator) fileCounted(n int64) {
	a.filesCounted.Add(1)
	a.Add(n)
}

// dirExpanded records one successfully listed directory.
func (a *Aggregator) dirExpanded() {
	a.dirsExpanded.Add(1)
}

// Total returns the accumulated newline total.
func (a *Aggregator) Total() int64 {
	return a.total.Load()
}

// Failed reports whether the sticky error flag is set.
func (a *Aggregator) Failed() bool {
	return a.failed.Load()
}

// FilesCounted returns the number of files successfully counted.
func (a *Aggregator) FilesCounted() int64 {
	return a.filesCounted.Load()
}

// DirsExpanded returns the number of directories successfully listed.
func (a *Aggregator) DirsExpanded() int64 {
	return a.dirsExpanded.Load()
}

// Diagnostics returns a copy of every diagnostic reported so far.
func (a *Aggregator) Diagnostics() []models.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Diagnostic, len(a.diagnostics))
	copy(out, a.diagnostics)
	return out
}
