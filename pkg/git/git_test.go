package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := r.Config()
	require.NoError(t, err)
	cfg.User.Name = "John Doe"
	cfg.User.Email = "john@doe.org"
	require.NoError(t, r.SetConfig(cfg))

	writeAndCommit(t, r, dir, "metadata.txt", "name=Plugin\nversion=0.1.0\n", "initial test checkin")

	return r
}

func writeAndCommit(t *testing.T, r *gogit.Repository, dir, name, content, message string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	w, err := r.Worktree()
	require.NoError(t, err)

	_, err = w.Add(name)
	require.NoError(t, err)

	_, err = w.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "John Doe",
			Email: "john@doe.org",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestState(t *testing.T) {
	dir := t.TempDir()
	setupTestRepo(t, dir)

	repo, err := Open(dir)
	require.NoError(t, err)

	state, err := repo.State()
	require.NoError(t, err)
	assert.Equal(t, "master", state.Branch)
	assert.True(t, state.Clean)
	assert.Empty(t, state.Tags)

	// an untracked file makes the tree dirty
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip"), 0o644))

	state, err = repo.State()
	require.NoError(t, err)
	assert.False(t, state.Clean)
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	setupTestRepo(t, dir)

	repo, err := Open(dir)
	require.NoError(t, err)

	err = repo.Commit("no changes yet")
	assert.ErrorIs(t, err, ErrNothingToCommit)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte("name=Plugin\nversion=0.2.0\n"), 0o644))
	require.NoError(t, repo.Add("metadata.txt"))
	require.NoError(t, repo.Commit("Release v0.2.0: update metadata"))

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestCheckout(t *testing.T) {
	dir := t.TempDir()
	r := setupTestRepo(t, dir)

	head, err := r.Head()
	require.NoError(t, err)
	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("dev"), head.Hash())))

	repo, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, repo.Checkout("dev"))

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "dev", branch)

	err = repo.Checkout("does-not-exist")
	assert.Error(t, err)
}

func TestRestoreFile(t *testing.T) {
	dir := t.TempDir()
	setupTestRepo(t, dir)

	repo, err := Open(dir)
	require.NoError(t, err)

	committed := "name=Plugin\nversion=0.1.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte("name=Plugin\nversion=9.9.9\n"), 0o644))

	require.NoError(t, repo.RestoreFile("metadata.txt"))

	got, err := os.ReadFile(filepath.Join(dir, "metadata.txt"))
	require.NoError(t, err)
	assert.Equal(t, committed, string(got))

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)
}
