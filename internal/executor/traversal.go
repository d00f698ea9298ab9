package executor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrison/lines/internal/fileutil"
	"github.com/harrison/lines/internal/models"
)

// visitedSet records the real paths of expanded directories so that
// followed symlinks cannot make the traversal loop forever.
type visitedSet struct {
	seen sync.Map
}

// firstVisit reports whether dir has not been expanded before and marks it.
// When the real path cannot be resolved the directory is treated as new.
func (v *visitedSet) firstVisit(dir string) bool {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return true
	}
	if abs, err := filepath.Abs(real); err == nil {
		real = abs
	}
	_, loaded := v.seen.LoadOrStore(real, struct{}{})
	return !loaded
}

// expand lists one directory and submits work for each of its entries.
// A listing failure is reported and the directory contributes no entries.
func (e *Engine) expand(s *Scheduler, agg *Aggregator, run *runState, item models.WorkItem) {
	if e.opts.FollowSymlinks && !run.visited.firstVisit(item.Path) {
		e.logger.LogDebug(fmt.Sprintf("Skipping already visited directory %s", item.Path))
		return
	}

	entries, err := os.ReadDir(item.Path)
	if err != nil {
		agg.Report(models.Diagnostic{Kind: models.SubdirectoryReadFailure, Path: item.Path, Err: err})
		return
	}
	agg.dirExpanded()

	matcher := run.matcher(item.Root)
	for _, entry := range entries {
		path := filepath.Join(item.Path, entry.Name())
		typ := entry.Type()

		if typ&fs.ModeSymlink != 0 {
			e.submitSymlink(s, matcher, item.Root, path)
			continue
		}

		isDir := typ.IsDir()
		if matcher.Match(path, isDir) {
			e.logger.LogDebug(fmt.Sprintf("Excluded %s", path))
			continue
		}
		if isDir {
			s.Submit(models.ExpandDirectory(path, item.Root))
		} else {
			s.Submit(models.CountFile(path, item.Root))
		}
	}
}

// submitSymlink resolves a symlink entry. Links to files are counted.
// Links to directories are expanded only when FollowSymlinks is set.
// Dangling links are handed to the counter, which applies the open policy.
func (e *Engine) submitSymlink(s *Scheduler, matcher *fileutil.Matcher, root, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		if matcher.Match(path, false) {
			e.logger.LogDebug(fmt.Sprintf("Excluded %s", path))
			return
		}
		s.Submit(models.CountFile(path, root))
		return
	}

	if !e.opts.FollowSymlinks {
		e.logger.LogDebug(fmt.Sprintf("Not following symlinked directory %s", path))
		return
	}
	if matcher.Match(path, true) {
		e.logger.LogDebug(fmt.Sprintf("Excluded %s", path))
		return
	}
	s.Submit(models.ExpandDirectory(path, root))
}
