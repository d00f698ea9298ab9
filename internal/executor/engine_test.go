package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/harrison/lines/internal/counter"
	"github.com/harrison/lines/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files relative to root; content "<dir>" creates a directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if content == "<dir>" {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *recordingSink) {
	t.Helper()
	c, err := counter.New(0)
	require.NoError(t, err)
	sink := &recordingSink{}
	return NewEngine(opts, c, nil, sink), sink
}

func diagnosticKinds(diags []models.Diagnostic) []models.DiagnosticKind {
	kinds := make([]models.DiagnosticKind, 0, len(diags))
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root bypasses permission checks")
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
}

func TestNewEngineRequiresCounter(t *testing.T) {
	assert.Panics(t, func() {
		NewEngine(Options{}, nil, nil, nil)
	})
}

func TestRunRecursiveScenario(t *testing.T) {
	root := t.TempDir()
	d := filepath.Join(root, "d")
	writeTree(t, d, map[string]string{
		"a.txt":     "a\nb\nc\n",
		"b.txt":     "",
		"sub/c.txt": "x\ny\n",
	})

	engine, sink := newTestEngine(t, Options{Recursive: true, Workers: 4})
	result := engine.Run([]string{d})

	assert.Equal(t, int64(5), result.Total)
	assert.False(t, result.Failed)
	assert.Equal(t, 0, result.ExitCode())
	assert.Empty(t, sink.emitted)
	assert.Equal(t, int64(3), result.FilesCounted)
	assert.Equal(t, int64(2), result.DirsExpanded)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{d}, result.Targets)
}

func TestRunMissingTargetScenario(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a\nb\nc\n"})
	missing := filepath.Join(root, "missing.txt")
	a := filepath.Join(root, "a.txt")

	engine, sink := newTestEngine(t, Options{})
	result := engine.Run([]string{missing, a})

	assert.Equal(t, int64(3), result.Total)
	assert.True(t, result.Failed)
	assert.Equal(t, 1, result.ExitCode())
	require.Len(t, sink.emitted, 1)
	assert.Equal(t, models.MissingTarget, sink.emitted[0].Kind)
	assert.Equal(t, missing, sink.emitted[0].Path)
}

func TestRunRejectsDirectoryWithoutRecursion(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dir/inner.txt": "1\n2\n3\n4\n",
		"top.txt":       "x\n",
	})
	dir := filepath.Join(root, "dir")

	engine, sink := newTestEngine(t, Options{Recursive: false})
	result := engine.Run([]string{dir, filepath.Join(root, "top.txt")})

	assert.Equal(t, int64(1), result.Total, "files below the rejected directory must not be counted")
	assert.True(t, result.Failed)
	assert.Equal(t, []models.DiagnosticKind{models.RejectedDirectory}, diagnosticKinds(sink.emitted))
	assert.Equal(t, dir, sink.emitted[0].Path)
	assert.Equal(t, int64(0), result.DirsExpanded)
}

func TestRunNoTargets(t *testing.T) {
	engine, _ := newTestEngine(t, Options{Recursive: true})
	result := engine.Run(nil)

	assert.Equal(t, int64(0), result.Total)
	assert.False(t, result.Failed)
}

func TestRunTotalIndependentOfConcurrency(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	var want int64
	for i := 0; i < 120; i++ {
		n := i % 17
		rel := fmt.Sprintf("l%d/m%d/f%d.txt", i%5, i%7, i)
		files[rel] = strings.Repeat("line\n", n)
		want += int64(n)
	}
	writeTree(t, root, files)

	for _, workers := range []int{1, 2, 3, 8, 64} {
		engine, _ := newTestEngine(t, Options{Recursive: true, Workers: workers})
		result := engine.Run([]string{root})
		assert.Equal(t, want, result.Total, "workers=%d", workers)
		assert.Equal(t, int64(120), result.FilesCounted, "workers=%d", workers)
		assert.False(t, result.Failed)
	}
}

func TestRunPartitionedTargetsMatchSingleRun(t *testing.T) {
	root := t.TempDir()
	var paths []string
	var want int64
	for i := 0; i < 30; i++ {
		rel := fmt.Sprintf("f%02d.txt", i)
		writeTree(t, root, map[string]string{rel: strings.Repeat("\n", i)})
		paths = append(paths, filepath.Join(root, rel))
		want += int64(i)
	}

	engine, _ := newTestEngine(t, Options{Workers: 4})
	var sum int64
	for _, part := range [][]string{paths[:7], paths[7:19], paths[19:]} {
		sum += engine.Run(part).Total
	}
	assert.Equal(t, want, sum)
	assert.Equal(t, want, engine.Run(paths).Total)

	reversed := make([]string, len(paths))
	for i, p := range paths {
		reversed[len(paths)-1-i] = p
	}
	assert.Equal(t, want, engine.Run(reversed).Total)
}

func TestRunDeepTree(t *testing.T) {
	root := t.TempDir()
	parts := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		parts = append(parts, "d")
	}
	deep := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "leaf.txt"), []byte("a\nb\n"), 0644))

	engine, _ := newTestEngine(t, Options{Recursive: true, Workers: 2})
	result := engine.Run([]string{root})

	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, int64(201), result.DirsExpanded)
}

func TestRunUnreadableSubdirectory(t *testing.T) {
	skipIfRoot(t)

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.txt":          "1\n2\n",
		"locked/hid.txt":  "1\n2\n3\n",
		"other/keep.txt":  "1\n",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	engine, sink := newTestEngine(t, Options{Recursive: true})
	result := engine.Run([]string{root})

	assert.Equal(t, int64(3), result.Total, "siblings of the unreadable directory are still counted")
	assert.True(t, result.Failed)
	require.Equal(t, []models.DiagnosticKind{models.SubdirectoryReadFailure}, diagnosticKinds(sink.emitted))
	assert.Equal(t, locked, sink.emitted[0].Path)
	assert.Error(t, sink.emitted[0].Err)
}

func TestRunUnreadableFilePolicy(t *testing.T) {
	skipOnWindows(t)

	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.txt": "1\n2\n"})
	dangling := filepath.Join(root, "dangling.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.txt"), dangling))

	t.Run("default skips silently", func(t *testing.T) {
		engine, sink := newTestEngine(t, Options{Recursive: true})
		result := engine.Run([]string{root})

		assert.Equal(t, int64(2), result.Total)
		assert.False(t, result.Failed, "unopenable files do not set the error flag by default")
		assert.Empty(t, sink.emitted)
		assert.Equal(t, int64(1), result.FilesCounted)
	})

	t.Run("strict reports", func(t *testing.T) {
		engine, sink := newTestEngine(t, Options{Recursive: true, Strict: true})
		result := engine.Run([]string{root})

		assert.Equal(t, int64(2), result.Total)
		assert.True(t, result.Failed)
		require.Equal(t, []models.DiagnosticKind{models.FileOpenFailure}, diagnosticKinds(sink.emitted))
		assert.Equal(t, dangling, sink.emitted[0].Path)
	})
}

func TestRunSymlinkedDirectories(t *testing.T) {
	skipOnWindows(t)

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"tree/a.txt":       "1\n",
		"outside/b.txt":    "1\n2\n",
		"tree/file-target": "1\n2\n3\n",
	})
	tree := filepath.Join(root, "tree")
	require.NoError(t, os.Symlink(filepath.Join(root, "outside"), filepath.Join(tree, "link-dir")))
	require.NoError(t, os.Symlink(filepath.Join(tree, "file-target"), filepath.Join(tree, "link-file")))

	t.Run("not followed by default", func(t *testing.T) {
		engine, _ := newTestEngine(t, Options{Recursive: true})
		result := engine.Run([]string{tree})
		// a.txt + file-target + link-file (symlinked files are counted)
		assert.Equal(t, int64(7), result.Total)
		assert.False(t, result.Failed)
	})

	t.Run("followed on request", func(t *testing.T) {
		engine, _ := newTestEngine(t, Options{Recursive: true, FollowSymlinks: true})
		result := engine.Run([]string{tree})
		assert.Equal(t, int64(9), result.Total)
		assert.False(t, result.Failed)
	})
}

func TestRunSymlinkCycleTerminates(t *testing.T) {
	skipOnWindows(t)

	root := t.TempDir()
	writeTree(t, root, map[string]string{"loop/sub/f.txt": "1\n2\n"})
	loop := filepath.Join(root, "loop")
	require.NoError(t, os.Symlink(loop, filepath.Join(loop, "sub", "back")))

	engine, _ := newTestEngine(t, Options{Recursive: true, FollowSymlinks: true})
	result := engine.Run([]string{loop})

	assert.Equal(t, int64(2), result.Total)
	assert.False(t, result.Failed)
}

func TestRunExclusion(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.txt":         "1\n",
		"skip.log":         "1\n2\n",
		"vendor/lib.txt":   "1\n2\n3\n",
		"src/deep/app.log": "1\n2\n3\n4\n",
		"src/app.txt":      "1\n2\n3\n4\n5\n",
		".gitignore":       "src/app.txt\n",
	})

	t.Run("patterns", func(t *testing.T) {
		engine, _ := newTestEngine(t, Options{Recursive: true, Exclude: []string{"*.log", "vendor/"}})
		result := engine.Run([]string{root})
		// keep.txt + src/app.txt + .gitignore
		assert.Equal(t, int64(7), result.Total)
	})

	t.Run("patterns and gitignore", func(t *testing.T) {
		engine, _ := newTestEngine(t, Options{Recursive: true, Exclude: []string{"*.log", "vendor/"}, UseGitignore: true})
		result := engine.Run([]string{root})
		// keep.txt + .gitignore
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("explicit file targets are never excluded", func(t *testing.T) {
		engine, _ := newTestEngine(t, Options{Exclude: []string{"*.log"}})
		result := engine.Run([]string{filepath.Join(root, "skip.log")})
		assert.Equal(t, int64(2), result.Total)
	})
}

func TestRunSameDirectoryTwice(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "1\n2\n"})

	engine, _ := newTestEngine(t, Options{Recursive: true})
	assert.Equal(t, int64(4), engine.Run([]string{root, root}).Total)

	engine, _ = newTestEngine(t, Options{Recursive: true, FollowSymlinks: true})
	assert.Equal(t, int64(2), engine.Run([]string{root, root}).Total, "visited tracking dedupes directories")
}

func TestClassify(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"f.txt": "", "d": "<dir>"})

	assert.Equal(t, models.KindFile, Classify(filepath.Join(root, "f.txt")).Kind)
	assert.Equal(t, models.KindDirectory, Classify(filepath.Join(root, "d")).Kind)
	assert.Equal(t, models.KindMissing, Classify(filepath.Join(root, "nope")).Kind)
}
