package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseRequiresVersion(t *testing.T) {
	cmd := New()
	cmd.SetArgs([]string{"release", "--repo-dir", t.TempDir()})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "missing version argument")
}

func TestReleaseRejectsBadVersion(t *testing.T) {
	for _, token := range []string{"1.0.0", "v1.0", "v1.2.3.4", "nonsense"} {
		t.Run(token, func(t *testing.T) {
			cmd := New()
			cmd.SetArgs([]string{"release", "--repo-dir", t.TempDir(), token})

			err := cmd.Execute()
			assert.ErrorContains(t, err, "bad version")
		})
	}
}

func TestSyncTagsFlagExcludesVersion(t *testing.T) {
	cmd := New()
	cmd.SetArgs([]string{"release", "--sync-tags", "v1.0.0"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "does not take a version argument")
}
