package executor

import (
	"fmt"
	"os"

	"github.com/harrison/lines/internal/fileutil"
	"github.com/harrison/lines/internal/models"
)

// Classify resolves path into a Target. Symbolic links are followed.
// Any stat failure, including permission errors, classifies as missing.
func Classify(path string) models.Target {
	info, err := os.Stat(path)
	if err != nil {
		return models.Target{Path: path, Kind: models.KindMissing}
	}
	if info.IsDir() {
		return models.Target{Path: path, Kind: models.KindDirectory}
	}
	return models.Target{Path: path, Kind: models.KindFile}
}

// classify turns a top-level target into work or a diagnostic.
func (e *Engine) classify(s *Scheduler, agg *Aggregator, run *runState, path string) {
	target := Classify(path)

	switch target.Kind {
	case models.KindMissing:
		agg.Report(models.Diagnostic{Kind: models.MissingTarget, Path: path})
	case models.KindFile:
		s.Submit(models.CountFile(path, ""))
	case models.KindDirectory:
		if !e.opts.Recursive {
			agg.Report(models.Diagnostic{Kind: models.RejectedDirectory, Path: path})
			return
		}
		run.setMatcher(path, e.buildMatcher(path))
		s.Submit(models.ExpandDirectory(path, path))
	}
}

// buildMatcher compiles the exclusion patterns for a directory target.
// An unreadable .gitignore is logged and only the explicit patterns are used.
func (e *Engine) buildMatcher(root string) *fileutil.Matcher {
	if len(e.opts.Exclude) == 0 && !e.opts.UseGitignore {
		return nil
	}
	m, err := fileutil.NewMatcher(root, e.opts.Exclude, e.opts.UseGitignore)
	if err != nil {
		e.logger.LogWarn(fmt.Sprintf("Ignoring .gitignore: %v", err))
		m, _ = fileutil.NewMatcher(root, e.opts.Exclude, false)
	}
	if m != nil {
		e.logger.LogDebug(fmt.Sprintf("Loaded %d exclusion pattern(s) for %s", m.PatternCount(), root))
	}
	return m
}
