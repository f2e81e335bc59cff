package git

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Tags returns the sorted names of every local tag.
func (r *Repo) Tags() ([]string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []string
	err = tagRefs.ForEach(func(t *plumbing.Reference) error {
		tags = append(tags, t.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(tags)
	return tags, nil
}

func (r *Repo) HasTag(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	if err != nil {
		if err == git.ErrTagNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repo) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger:  r.authorSignature(),
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

func (r *Repo) DeleteTag(name string) error {
	if err := r.repo.DeleteTag(name); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}

// PushTags pushes every local tag to the remote.
func (r *Repo) PushTags(ctx context.Context, remote string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{"refs/tags/*:refs/tags/*"},
		Auth:       GetGitAuth(),
	})
	if err != nil {
		if err == git.NoErrAlreadyUpToDate {
			return nil
		}
		return fmt.Errorf("failed to push tags: %w", err)
	}
	return nil
}

// FetchTags fetches the remote's complete tag set.
func (r *Repo) FetchTags(ctx context.Context, remote string) error {
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
		Auth:       GetGitAuth(),
	})
	if err != nil {
		if err == git.NoErrAlreadyUpToDate {
			return nil
		}
		return fmt.Errorf("failed to fetch tags from %s: %w", remote, err)
	}
	return nil
}

// SyncTags makes the local tag set identical to the remote's: every local
// tag is deleted, then the remote's tags are fetched fresh. Tags deleted on
// the remote are therefore pruned locally as well.
func (r *Repo) SyncTags(ctx context.Context, remote string) error {
	tags, err := r.Tags()
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := r.DeleteTag(tag); err != nil {
			return err
		}
	}
	return r.FetchTags(ctx, remote)
}
