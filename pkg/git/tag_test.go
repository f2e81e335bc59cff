package git

import (
	"context"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListTags(t *testing.T) {
	dir := t.TempDir()
	setupTestRepo(t, dir)

	repo, err := Open(dir)
	require.NoError(t, err)

	for _, tag := range []string{"v0.2.0", "v0.1.0", "v0.10.0"} {
		require.NoError(t, repo.CreateTag(tag, "Release "+tag))
	}

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.1.0", "v0.10.0", "v0.2.0"}, tags)

	has, err := repo.HasTag("v0.2.0")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasTag("v9.9.9")
	require.NoError(t, err)
	assert.False(t, has)

	// duplicate creation is a hard failure
	err = repo.CreateTag("v0.1.0", "Release v0.1.0")
	assert.Error(t, err)
}

func TestDeleteTag(t *testing.T) {
	dir := t.TempDir()
	setupTestRepo(t, dir)

	repo, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, repo.CreateTag("v0.1.0", "Release v0.1.0"))
	require.NoError(t, repo.DeleteTag("v0.1.0"))

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.Empty(t, tags)

	assert.Error(t, repo.DeleteTag("v0.1.0"))
}

func TestSyncTags(t *testing.T) {
	ctx := context.Background()

	remoteDir := t.TempDir()
	setupTestRepo(t, remoteDir)

	localDir := t.TempDir()
	_, err := gogit.PlainClone(localDir, false, &gogit.CloneOptions{URL: remoteDir})
	require.NoError(t, err)

	remoteRepo, err := Open(remoteDir)
	require.NoError(t, err)
	require.NoError(t, remoteRepo.CreateTag("v1.0.0", "Release v1.0.0"))
	require.NoError(t, remoteRepo.CreateTag("v1.1.0", "Release v1.1.0"))

	local, err := Open(localDir)
	require.NoError(t, err)

	// a stray local-only tag, deleted on the remote by someone else
	require.NoError(t, local.CreateTag("v0.0.9", "Release v0.0.9"))

	require.NoError(t, local.SyncTags(ctx, "origin"))

	tags, err := local.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0"}, tags)

	// second sync is a no-op
	require.NoError(t, local.SyncTags(ctx, "origin"))

	tags, err = local.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0"}, tags)
}
