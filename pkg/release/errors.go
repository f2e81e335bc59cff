package release

import "errors"

var (
	// ErrWrongBranch means the release was started from the wrong branch.
	ErrWrongBranch = errors.New("not on the development branch")

	// ErrDirtyTree means the working tree has uncommitted changes.
	ErrDirtyTree = errors.New("working tree has uncommitted changes")

	// ErrDuplicateTag means the requested release tag already exists.
	ErrDuplicateTag = errors.New("tag already exists")

	// ErrDeclined means the operator answered no at a confirmation gate.
	// It aborts the pipeline but is not a failure: any pending metadata
	// edit has been reverted and callers should exit zero.
	ErrDeclined = errors.New("release aborted by operator")
)
