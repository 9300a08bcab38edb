package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CreateCommit commits the staged changes on the current HEAD and returns
// the new commit hash. Use AllowEmpty to commit a clean working tree.
//
// Example:
//
//	hash, err := repo.CreateCommit(git.CommitOptions{
//	    Author:  "Mirror Bot",
//	    Email:   "bot@example.com",
//	    Message: "Update data",
//	})
func (r *Repository) CreateCommit(opts CommitOptions) (plumbing.Hash, error) {
	if opts.Author == "" || opts.Email == "" {
		return plumbing.ZeroHash, wrapError(gogit.ErrMissingAuthor, "failed to create commit")
	}
	if opts.Message == "" {
		return plumbing.ZeroHash, wrapError(fmt.Errorf("message is required"), "failed to create commit")
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to get worktree")
	}

	hash, err := wt.Commit(opts.Message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to create commit")
	}

	return hash, nil
}

// MergeBase returns the best common ancestor of commits a and b.
//
// When several equally good ancestors exist the first one found is
// returned. Returns an error wrapping ErrNoMergeBase for unrelated
// histories, or an ErrNotFound-classified error when either commit is
// missing from the object store.
func (r *Repository) MergeBase(a, b plumbing.Hash) (plumbing.Hash, error) {
	ca, err := r.repo.CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to load commit %s", a))
	}
	cb, err := r.repo.CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to load commit %s", b))
	}

	bases, err := ca.MergeBase(cb)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to compute merge base")
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, wrapError(
			fmt.Errorf("%w between %s and %s", ErrNoMergeBase, a, b),
			"failed to compute merge base",
		)
	}

	return bases[0].Hash, nil
}
