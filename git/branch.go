package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// LookupBranch returns the local branch with the given name.
//
// Branch.IsHead is set when HEAD is a symbolic reference to the branch and
// the repository has a working tree, i.e. the branch is checked out.
//
// Returns an ErrNotFound-classified error if the branch doesn't exist.
func (r *Repository) LookupBranch(name string) (*Branch, error) {
	if name == "" {
		return nil, wrapError(fmt.Errorf("branch name is required"), "failed to look up branch")
	}

	refName := plumbing.NewBranchReferenceName(name)
	ref, err := r.repo.Reference(refName, true)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to look up branch %q", name))
	}

	return &Branch{
		Name:   name,
		Ref:    refName,
		Hash:   ref.Hash(),
		IsHead: r.isHead(refName),
	}, nil
}

func (r *Repository) isHead(refName plumbing.ReferenceName) bool {
	if r.IsBare() {
		return false
	}

	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return false
	}

	return head.Type() == plumbing.SymbolicReference && head.Target() == refName
}

// Upstream resolves the remote-tracking branch the named local branch is
// configured to follow (branch.<name>.remote and branch.<name>.merge).
//
// A remote of "." tracks another local branch. Returns an error wrapping
// ErrNoUpstream when no tracking configuration exists, or an
// ErrNotFound-classified error when the tracking reference is missing.
func (r *Repository) Upstream(name string) (*Branch, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, wrapError(err, "failed to read repository config")
	}

	b, ok := cfg.Branches[name]
	if !ok || b.Remote == "" || b.Merge == "" {
		return nil, wrapError(fmt.Errorf("%w: %s", ErrNoUpstream, name), "failed to resolve upstream")
	}

	refName := b.Merge
	if b.Remote != "." {
		refName = plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short())
	}

	ref, err := r.repo.Reference(refName, true)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to resolve upstream %q", refName.Short()))
	}

	return &Branch{
		Name:     refName.Short(),
		Ref:      refName,
		Hash:     ref.Hash(),
		IsRemote: b.Remote != ".",
		Remote:   b.Remote,
		Merge:    b.Merge,
	}, nil
}

// SetUpstream configures the local branch to track branch merge on remote,
// the same configuration a clone writes for its checked-out branch.
//
// Example:
//
//	err := repo.SetUpstream("main", "origin", "main")
func (r *Repository) SetUpstream(name, remote, merge string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return wrapError(err, "failed to read repository config")
	}

	cfg.Branches[name] = &config.Branch{
		Name:   name,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(merge),
	}

	if err := r.repo.Storer.SetConfig(cfg); err != nil {
		return wrapError(err, "failed to save tracking configuration")
	}

	return nil
}

// SetBranchTarget moves the named local branch from old to target.
//
// The update is a compare-and-swap: if the branch no longer points at old
// the reference is left alone and a Conflict-classified error is returned.
// The working tree is never touched.
func (r *Repository) SetBranchTarget(name string, old, target plumbing.Hash) error {
	refName := plumbing.NewBranchReferenceName(name)
	next := plumbing.NewHashReference(refName, target)
	prev := plumbing.NewHashReference(refName, old)

	if err := r.repo.Storer.CheckAndSetReference(next, prev); err != nil {
		return wrapError(err, fmt.Sprintf("failed to update branch %q", name))
	}

	return nil
}

// SetReference points refName at hash unconditionally. It is meant for
// maintenance and tests; prefer SetBranchTarget for branch moves.
func (r *Repository) SetReference(refName plumbing.ReferenceName, hash plumbing.Hash) error {
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(refName, hash)); err != nil {
		return wrapError(err, fmt.Sprintf("failed to set reference %q", refName))
	}

	return nil
}

// ListBranches returns all local and remote-tracking branches.
func (r *Repository) ListBranches() ([]Branch, error) {
	var branches []Branch

	refs, err := r.repo.References()
	if err != nil {
		return nil, wrapError(err, "failed to list references")
	}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		refName := ref.Name()
		if !refName.IsBranch() && !refName.IsRemote() {
			return nil
		}

		branches = append(branches, Branch{
			Name:     refName.Short(),
			Ref:      refName,
			Hash:     ref.Hash(),
			IsRemote: refName.IsRemote(),
			IsHead:   refName.IsBranch() && r.isHead(refName),
		})
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to iterate references")
	}

	return branches, nil
}
