package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitHttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Repo is a handle on the plugin repository's working tree.
type Repo struct {
	repo *git.Repository
	dir  string
}

// State is a read-only snapshot of the repository, taken before the
// release pipeline mutates anything.
type State struct {
	Branch string
	Clean  bool
	Tags   []string
}

func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	return &Repo{repo: r, dir: dir}, nil
}

func (r *Repo) Dir() string {
	return r.dir
}

// State reads the current branch, working-tree cleanliness and tag set.
func (r *Repo) State() (State, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return State{}, err
	}
	clean, err := r.IsClean()
	if err != nil {
		return State{}, err
	}
	tags, err := r.Tags()
	if err != nil {
		return State{}, err
	}
	return State{Branch: branch, Clean: clean, Tags: tags}, nil
}

func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch (detached at %s)", head.Hash())
	}
	return head.Name().Short(), nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get git worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	return status.IsClean(), nil
}

func (r *Repo) Checkout(branch string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get git worktree: %w", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branch, err)
	}
	return nil
}

// Add stages a file or directory tree.
func (r *Repo) Add(path string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get git worktree: %w", err)
	}
	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("failed to stage %s: %w", path, err)
	}
	return nil
}

// ErrNothingToCommit is returned by Commit when the working tree is clean.
var ErrNothingToCommit = fmt.Errorf("nothing to commit, working tree clean")

func (r *Repo) Commit(message string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get git worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return ErrNothingToCommit
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: r.authorSignature(),
	})
	if err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// RestoreFile rewrites a worktree file from its content at HEAD,
// discarding local modifications to that one path.
func (r *Repo) RestoreFile(path string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD commit: %w", err)
	}
	f, err := commit.File(path)
	if err != nil {
		return fmt.Errorf("failed to find %s at HEAD: %w", path, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return fmt.Errorf("failed to read %s at HEAD: %w", path, err)
	}
	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		mode = 0o644
	}
	if err := os.WriteFile(filepath.Join(r.dir, path), []byte(contents), mode); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}

func (r *Repo) PushBranch(ctx context.Context, branch, remote string) error {
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       GetGitAuth(),
	})
	if err != nil {
		if err == git.NoErrAlreadyUpToDate {
			return nil
		}
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}

// authorSignature builds the committer identity from the repository's git
// config, falling back to a fixed identity when none is set.
func (r *Repo) authorSignature() *object.Signature {
	sig := &object.Signature{
		Name:  "wfd-release",
		Email: "wfd-release@nicevibesplus.github.io",
		When:  time.Now(),
	}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

// GetGitAuth returns basic auth from the GITHUB_TOKEN environment variable,
// or nil so the transport falls back to ambient credentials.
func GetGitAuth() *gitHttp.BasicAuth {
	gitToken := os.Getenv("GITHUB_TOKEN")
	if gitToken == "" {
		return nil
	}
	return &gitHttp.BasicAuth{
		Username: "abc123",
		Password: gitToken,
	}
}
