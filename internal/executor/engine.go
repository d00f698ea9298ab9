package executor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/lines/internal/counter"
	"github.com/harrison/lines/internal/fileutil"
	"github.com/harrison/lines/internal/models"
)

// Options configures an Engine run.
type Options struct {
	Recursive      bool     // Descend into directory targets
	Workers        int      // Pool size (0 = DefaultWorkers)
	Strict         bool     // Unreadable files become diagnostics and set the error flag
	FollowSymlinks bool     // Expand symlinked directories, with cycle detection
	Exclude        []string // Gitignore-style patterns applied below directory targets
	UseGitignore   bool     // Also load <target>/.gitignore for each directory target
}

// Engine classifies targets, expands directories and counts files on a
// bounded worker pool, merging every result into one Aggregator per run.
type Engine struct {
	opts    Options
	counter *counter.Counter
	logger  Logger
	sink    DiagnosticSink
}

// NewEngine creates an Engine. logger and sink may be nil.
func NewEngine(opts Options, c *counter.Counter, logger Logger, sink DiagnosticSink) *Engine {
	if c == nil {
		panic("counter cannot be nil")
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{
		opts:    opts,
		counter: c,
		logger:  logger,
		sink:    sink,
	}
}

// runState is the per-run traversal bookkeeping shared by all tasks.
type runState struct {
	visited visitedSet

	mu       sync.RWMutex
	matchers map[string]*fileutil.Matcher
}

func newRunState() *runState {
	return &runState{matchers: make(map[string]*fileutil.Matcher)}
}

// matcher returns the exclusion matcher registered for root, or nil.
func (r *runState) matcher(root string) *fileutil.Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matchers[root]
}

func (r *runState) setMatcher(root string, m *fileutil.Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers[root] = m
}

// Run processes targets to completion and returns the run's result.
// It returns only after every transitively spawned work item has finished
// and the worker pool has been torn down.
func (e *Engine) Run(targets []string) models.RunResult {
	startedAt := time.Now()
	runID := uuid.New().String()
	e.logger.LogInfo(fmt.Sprintf("Run %s: %d target(s), recursive=%v", runID, len(targets), e.opts.Recursive))

	agg := NewAggregator(e.sink)
	run := newRunState()

	s := NewScheduler(e.opts.Workers, func(s *Scheduler, item models.WorkItem) {
		e.dispatch(s, agg, run, item)
	}, e.logger)
	s.onPanic = func(models.WorkItem, any) {
		agg.MarkError()
	}

	s.Start()
	for _, target := range targets {
		s.Submit(models.ClassifyTarget(target))
	}
	s.Wait()

	result := models.RunResult{
		RunID:        runID,
		Targets:      append([]string(nil), targets...),
		Total:        agg.Total(),
		Failed:       agg.Failed(),
		FilesCounted: agg.FilesCounted(),
		DirsExpanded: agg.DirsExpanded(),
		Diagnostics:  agg.Diagnostics(),
		StartedAt:    startedAt,
		Duration:     time.Since(startedAt),
	}
	e.logger.LogInfo(fmt.Sprintf("Run %s complete: total=%d files=%d dirs=%d failed=%v",
		runID, result.Total, result.FilesCounted, result.DirsExpanded, result.Failed))
	return result
}

// dispatch routes one WorkItem to its handler.
func (e *Engine) dispatch(s *Scheduler, agg *Aggregator, run *runState, item models.WorkItem) {
	switch item.Kind {
	case models.WorkClassifyTarget:
		e.classify(s, agg, run, item.Path)
	case models.WorkExpandDirectory:
		e.expand(s, agg, run, item)
	case models.WorkCountFile:
		e.count(agg, item)
	default:
		e.logger.LogError(fmt.Sprintf("Unknown work item %s", item))
	}
}

// count streams one file and adds its newline count to the aggregator.
func (e *Engine) count(agg *Aggregator, item models.WorkItem) {
	n, err := e.counter.CountFile(item.Path)
	if err != nil {
		if e.opts.Strict {
			agg.Report(models.Diagnostic{Kind: models.FileOpenFailure, Path: item.Path, Err: err})
			return
		}
		e.logger.LogDebug(fmt.Sprintf("Skipping unreadable file: %v", err))
		return
	}
	agg.fileCounted(n)
}
