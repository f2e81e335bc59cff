// Package pydeps vendors the plugin's Python runtime dependency into the
// repository so the release bundle works offline inside QGIS.
package pydeps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/afero"
)

// Vendorer installs one named package and its transitive requirements into
// Dir for a specific target interpreter version, then strips everything the
// plugin does not need at runtime.
type Vendorer struct {
	// Dir is the vendoring target, e.g. "libs".
	Dir string

	// Package is the pip package to install, e.g. "rocrate".
	Package string

	// PythonVersion is the interpreter version the installed files must
	// target, e.g. "3.9". QGIS bundles its own interpreter, so this is
	// independent of whatever python runs pip here.
	PythonVersion string

	// Python is the executable used to invoke pip. Defaults to "python3".
	Python string

	// Fs defaults to the OS filesystem. Swapped for an in-memory one in
	// tests of the prune step.
	Fs afero.Fs
}

func (v *Vendorer) fs() afero.Fs {
	if v.Fs == nil {
		return afero.NewOsFs()
	}
	return v.Fs
}

func (v *Vendorer) python() string {
	if v.Python == "" {
		return "python3"
	}
	return v.Python
}

// Vendor refreshes Dir from scratch: stale content is removed, the package
// set is installed, and non-runtime artifacts are pruned. Prune failures
// are tolerated and logged; install failures are fatal.
func (v *Vendorer) Vendor(ctx context.Context) error {
	log := clog.FromContext(ctx)
	fs := v.fs()

	if err := fs.RemoveAll(v.Dir); err != nil {
		return fmt.Errorf("failed to remove stale vendor directory %s: %w", v.Dir, err)
	}
	if err := fs.MkdirAll(v.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create vendor directory %s: %w", v.Dir, err)
	}

	if err := v.install(ctx); err != nil {
		return err
	}

	report := Prune(fs, v.Dir)
	for path, err := range report.Failed {
		log.Warnf("could not remove %s: %v", path, err)
	}
	log.Infof("vendored %s into %s, pruned %d artifacts", v.Package, v.Dir, len(report.Removed))

	return nil
}

func (v *Vendorer) install(ctx context.Context) error {
	args := []string{
		"-m", "pip", "install",
		"--upgrade",
		"--target", v.Dir,
		"--python-version", v.PythonVersion,
		"--only-binary=:all:",
		v.Package,
	}

	cmd := exec.CommandContext(ctx, v.python(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pip install of %s failed: %s: %w", v.Package, strings.TrimSpace(string(out)), err)
	}
	return nil
}
