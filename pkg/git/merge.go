package git

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// Merge merges branch into the currently checked-out branch without opening
// an editor. go-git does not implement merge, so this shells out to git.
//
// keepOurs is the narrow conflict policy: when the merge conflicts ONLY on
// paths in keepOurs, each of those paths is resolved with the current
// branch's version, staged, and the merge is committed with its original
// message. A conflict on any other path is fatal and the working tree is
// left in its conflicted state for the operator.
func (r *Repo) Merge(ctx context.Context, branch string, keepOurs []string) error {
	out, err := r.git(ctx, "merge", "--no-edit", branch)
	if err == nil {
		return nil
	}

	conflicts, confErr := r.conflictedPaths(ctx)
	if confErr != nil || len(conflicts) == 0 {
		return fmt.Errorf("failed to merge %s: %s: %w", branch, strings.TrimSpace(out), err)
	}

	for _, path := range conflicts {
		if !slices.Contains(keepOurs, path) {
			return fmt.Errorf("merge of %s conflicts on %s, resolve manually: %w", branch, strings.Join(conflicts, ", "), err)
		}
	}

	for _, path := range conflicts {
		if out, err := r.git(ctx, "checkout", "--ours", path); err != nil {
			return fmt.Errorf("failed to keep our version of %s: %s: %w", path, strings.TrimSpace(out), err)
		}
		if out, err := r.git(ctx, "add", path); err != nil {
			return fmt.Errorf("failed to stage resolved %s: %s: %w", path, strings.TrimSpace(out), err)
		}
	}

	// commit with the merge message git already prepared in MERGE_MSG
	if out, err := r.git(ctx, "commit", "--no-edit"); err != nil {
		return fmt.Errorf("failed to commit resolved merge: %s: %w", strings.TrimSpace(out), err)
	}
	return nil
}

// conflictedPaths lists the unmerged paths of an in-progress merge.
func (r *Repo) conflictedPaths(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
