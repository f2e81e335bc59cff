package pydeps

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Report records what a prune pass removed and what it could not remove.
// Failures here are tolerated: a missing or unremovable subtree never
// fails the vendoring step.
type Report struct {
	Removed []string
	Failed  map[string]error
}

// Tolerated reports whether any failures were swallowed.
func (r Report) Tolerated() bool {
	return len(r.Failed) > 0
}

// prunable decides whether a directory entry is a non-runtime artifact.
func prunable(name string, isDir bool) bool {
	if isDir {
		return name == "__pycache__" ||
			name == "tests" ||
			strings.HasSuffix(name, ".dist-info") ||
			strings.HasSuffix(name, ".egg-info")
	}
	return strings.HasSuffix(name, ".pyc")
}

// Prune removes installer artifacts the plugin never loads at runtime:
// bytecode caches, compiled bytecode files, packaging metadata directories
// and bundled test suites. Removal is best effort.
func Prune(fs afero.Fs, dir string) Report {
	report := Report{Failed: map[string]error{}}

	var targets []string
	afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error { //nolint:errcheck
		if err != nil || path == dir {
			return nil
		}
		if prunable(filepath.Base(path), info.IsDir()) {
			targets = append(targets, path)
			if info.IsDir() {
				return filepath.SkipDir
			}
		}
		return nil
	})

	for _, path := range targets {
		if err := fs.RemoveAll(path); err != nil {
			report.Failed[path] = err
			continue
		}
		report.Removed = append(report.Removed, path)
	}

	return report
}
