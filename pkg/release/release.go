// Package release orchestrates the plugin release pipeline: guarded
// precondition checks, branch promotion, metadata bump, dependency
// vendoring and tag publication, in that order, stopping at the first
// fatal failure.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/git"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/metadata"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/versions"
)

// Repository is the version-control surface the pipeline needs. pkg/git
// implements it against a real repository; tests inject an in-memory fake.
type Repository interface {
	Dir() string
	State() (git.State, error)
	Checkout(branch string) error
	Merge(ctx context.Context, branch string, keepOurs []string) error
	Add(path string) error
	Commit(message string) error
	CreateTag(name, message string) error
	RestoreFile(path string) error
	PushBranch(ctx context.Context, branch, remote string) error
	PushTags(ctx context.Context, remote string) error
	SyncTags(ctx context.Context, remote string) error
}

// Installer materializes the vendored dependency tree.
type Installer interface {
	Vendor(ctx context.Context) error
}

// Confirmer answers the pipeline's yes/no gates. Implementations must
// default to no.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Options carries everything the pipeline is parameterized on.
type Options struct {
	Version versions.ReleaseVersion

	DevBranch     string
	ReleaseBranch string
	Remote        string

	// MetadataFile is the plugin metadata file holding the version key,
	// relative to the repository root.
	MetadataFile string

	// IgnoreFile is the one path allowed to conflict during the merge;
	// the release branch's version wins.
	IgnoreFile string

	// VendorDir is the vendored-dependency directory, relative to the
	// repository root.
	VendorDir string

	SkipMerge bool
	SkipPush  bool
}

// StageResult records one stage's outcome. Tolerated results are failures
// that were deliberately swallowed (best-effort cleanup and the
// nothing-to-commit case).
type StageResult struct {
	Stage     string
	Err       error
	Tolerated bool
}

// Pipeline runs the release stages against injected collaborators.
type Pipeline struct {
	Opts      Options
	Repo      Repository
	Installer Installer
	Confirm   Confirmer

	// Out receives operator-facing output (the metadata diff preview).
	// Defaults to stdout.
	Out io.Writer

	// Fs is the filesystem used for the best-effort stale-libs cleanup.
	// Defaults to the OS filesystem.
	Fs afero.Fs

	results []StageResult
}

func (p *Pipeline) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Pipeline) record(stage string, err error, tolerated bool) {
	p.results = append(p.results, StageResult{Stage: stage, Err: err, Tolerated: tolerated})
}

// Tolerated returns the failures that were swallowed during the run.
func (p *Pipeline) Tolerated() []StageResult {
	return lo.Filter(p.results, func(r StageResult, _ int) bool {
		return r.Tolerated && r.Err != nil
	})
}

// Results returns every stage outcome recorded so far, in order.
func (p *Pipeline) Results() []StageResult {
	return p.results
}

// Run executes the pipeline. It returns ErrDeclined (wrapped) when the
// operator declines the metadata confirmation; callers treat that as a
// clean exit, not a failure. Any other error names the stage that failed.
func (p *Pipeline) Run(ctx context.Context) error {
	p.results = nil

	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"sync-tags", p.syncTags},
		{"validate", p.validate},
		{"merge", p.merge},
		{"update-metadata", p.updateMetadata},
		{"vendor-deps", p.vendorDeps},
		{"publish", p.publish},
	}

	for _, st := range stages {
		err := st.run(ctx)
		p.record(st.name, err, false)
		if err != nil {
			if errors.Is(err, ErrDeclined) {
				return err
			}
			return fmt.Errorf("%s stage failed: %w", st.name, err)
		}
	}
	return nil
}

// syncTags optionally refreshes the local tag set from the remote before
// any validation, so the duplicate-tag check sees the authoritative set.
func (p *Pipeline) syncTags(ctx context.Context) error {
	ok, err := p.Confirm.Confirm(fmt.Sprintf("Sync local tags with %s first?", p.Opts.Remote))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return p.Repo.SyncTags(ctx, p.Opts.Remote)
}

// validate checks every precondition before anything mutates: correct
// branch, clean tree, no duplicate tag. All checks are pure reads.
func (p *Pipeline) validate(context.Context) error {
	state, err := p.Repo.State()
	if err != nil {
		return err
	}

	if state.Branch != p.Opts.DevBranch {
		return fmt.Errorf("%w: on %q, need %q", ErrWrongBranch, state.Branch, p.Opts.DevBranch)
	}
	if !state.Clean {
		return fmt.Errorf("%w: commit or stash before releasing", ErrDirtyTree)
	}
	tag := p.Opts.Version.Tag()
	if lo.Contains(state.Tags, tag) {
		return fmt.Errorf("%w: %s\nexisting tags:\n  %s", ErrDuplicateTag, tag, strings.Join(state.Tags, "\n  "))
	}
	return nil
}

// merge promotes dev into the release branch. The ignore file is the one
// path allowed to conflict; the release branch's version is kept. A stale
// vendored tree carried over from dev is removed best-effort, since
// vendoring rebuilds it from scratch anyway.
func (p *Pipeline) merge(ctx context.Context) error {
	if p.Opts.SkipMerge {
		return nil
	}

	if err := p.Repo.Checkout(p.Opts.ReleaseBranch); err != nil {
		return err
	}
	if err := p.Repo.Merge(ctx, p.Opts.DevBranch, []string{p.Opts.IgnoreFile}); err != nil {
		return err
	}

	stale := filepath.Join(p.Repo.Dir(), p.Opts.VendorDir)
	if err := p.fs().RemoveAll(stale); err != nil {
		p.record("merge", fmt.Errorf("could not remove stale %s: %w", p.Opts.VendorDir, err), true)
		clog.FromContext(ctx).Warnf("could not remove stale %s: %v", p.Opts.VendorDir, err)
	}
	return nil
}

// updateMetadata rewrites the version key, previews the change and gates
// on operator confirmation. Declining restores the committed content and
// aborts the pipeline cleanly.
func (p *Pipeline) updateMetadata(ctx context.Context) error {
	path := filepath.Join(p.Repo.Dir(), p.Opts.MetadataFile)

	if current, err := metadata.Version(path); err == nil {
		clog.FromContext(ctx).Infof("metadata version %s -> %s", current, p.Opts.Version.Number())
	}

	oldLine, newLine, err := metadata.SetVersion(path, p.Opts.Version.Number())
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out(), "%s\n-%s\n+%s\n", p.Opts.MetadataFile, oldLine, newLine)

	ok, err := p.Confirm.Confirm("Keep this version change and continue?")
	if err != nil {
		return err
	}
	if !ok {
		if err := p.Repo.RestoreFile(p.Opts.MetadataFile); err != nil {
			return fmt.Errorf("failed to revert %s after decline: %w", p.Opts.MetadataFile, err)
		}
		return fmt.Errorf("%w: %s left unchanged", ErrDeclined, p.Opts.MetadataFile)
	}

	return p.Repo.Add(p.Opts.MetadataFile)
}

func (p *Pipeline) vendorDeps(ctx context.Context) error {
	if err := p.Installer.Vendor(ctx); err != nil {
		return err
	}
	return p.Repo.Add(p.Opts.VendorDir)
}

// publish commits the staged release content, creates the annotated tag
// and pushes. The commit tolerates a clean tree (a re-run legitimately has
// nothing new); the tag and the pushes do not tolerate anything.
func (p *Pipeline) publish(ctx context.Context) error {
	tag := p.Opts.Version.Tag()

	message := fmt.Sprintf("Release %s: update plugin metadata and vendored dependencies", tag)
	if err := p.Repo.Commit(message); err != nil {
		if !errors.Is(err, git.ErrNothingToCommit) {
			return err
		}
		p.record("publish", err, true)
		clog.FromContext(ctx).Infof("nothing to commit, tagging as-is")
	}

	if err := p.Repo.CreateTag(tag, "Release "+tag); err != nil {
		return err
	}

	if p.Opts.SkipPush {
		return nil
	}

	branch := p.Opts.ReleaseBranch
	if p.Opts.SkipMerge {
		branch = p.Opts.DevBranch
	}
	if err := p.Repo.PushBranch(ctx, branch, p.Opts.Remote); err != nil {
		return err
	}
	return p.Repo.PushTags(ctx, p.Opts.Remote)
}
