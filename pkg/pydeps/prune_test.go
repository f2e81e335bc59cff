package pydeps

import (
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, fs afero.Fs, paths map[string]bool) {
	t.Helper()
	for path, isDir := range paths {
		if isDir {
			require.NoError(t, fs.MkdirAll(path, 0o755))
		} else {
			require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
		}
	}
}

func TestPrune(t *testing.T) {
	fs := afero.NewMemMapFs()
	populate(t, fs, map[string]bool{
		"libs/rocrate/__init__.py":                 false,
		"libs/rocrate/model.py":                    false,
		"libs/rocrate/model.pyc":                   false,
		"libs/rocrate/__pycache__":                 true,
		"libs/rocrate/__pycache__/model.cpython-39.pyc": false,
		"libs/rocrate-0.7.0.dist-info/METADATA":    false,
		"libs/jsonschema-4.17.3.egg-info/PKG-INFO": false,
		"libs/jsonschema/tests/test_schema.py":     false,
		"libs/jsonschema/validators.py":            false,
	})

	report := Prune(fs, "libs")
	assert.False(t, report.Tolerated())

	sort.Strings(report.Removed)
	assert.Equal(t, []string{
		"libs/jsonschema-4.17.3.egg-info",
		"libs/jsonschema/tests",
		"libs/rocrate-0.7.0.dist-info",
		"libs/rocrate/__pycache__",
		"libs/rocrate/model.pyc",
	}, report.Removed)

	// runtime files survive
	for _, path := range []string{
		"libs/rocrate/__init__.py",
		"libs/rocrate/model.py",
		"libs/jsonschema/validators.py",
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}

	// pruned trees are gone entirely
	for _, path := range []string{
		"libs/rocrate/__pycache__",
		"libs/jsonschema/tests",
		"libs/rocrate-0.7.0.dist-info",
		"libs/jsonschema-4.17.3.egg-info",
		"libs/rocrate/model.pyc",
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
}

func TestPruneNothingToDo(t *testing.T) {
	fs := afero.NewMemMapFs()
	populate(t, fs, map[string]bool{
		"libs/rocrate/__init__.py": false,
	})

	report := Prune(fs, "libs")
	assert.Empty(t, report.Removed)
	assert.False(t, report.Tolerated())
}

func TestPruneToleratesRemovalFailures(t *testing.T) {
	mem := afero.NewMemMapFs()
	populate(t, mem, map[string]bool{
		"libs/rocrate/__init__.py": false,
		"libs/rocrate/__pycache__": true,
		"libs/rocrate/model.pyc":   false,
	})

	// removal is refused, but the prune pass itself must still succeed
	report := Prune(afero.NewReadOnlyFs(mem), "libs")

	assert.True(t, report.Tolerated())
	assert.Empty(t, report.Removed)
	assert.Len(t, report.Failed, 2)
	assert.Contains(t, report.Failed, "libs/rocrate/__pycache__")
	assert.Contains(t, report.Failed, "libs/rocrate/model.pyc")
}

func TestPruneMissingDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	// absence of the whole tree must not fail
	report := Prune(fs, "libs")
	assert.Empty(t, report.Removed)
	assert.False(t, report.Tolerated())
}

func TestVendorRefreshesDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	populate(t, fs, map[string]bool{
		"libs/stale-package/old.py": false,
	})

	v := &Vendorer{
		Dir:           "libs",
		Package:       "rocrate",
		PythonVersion: "3.9",
		Python:        "false", // installer must not be reached in this test
		Fs:            fs,
	}

	err := v.Vendor(t.Context())
	require.Error(t, err)

	// the stale content is already gone by the time the installer runs
	exists, statErr := afero.Exists(fs, "libs/stale-package/old.py")
	require.NoError(t, statErr)
	assert.False(t, exists)
}
