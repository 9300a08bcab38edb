package testutil

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jmgilman/go/gitmirror/git"
)

// SkipWithoutGitBinary skips tests that move history over the file://
// transport. go-git serves that transport by running git-upload-pack and
// git-receive-pack, so a git installation is required.
func SkipWithoutGitBinary(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available; skipping file transport test")
	}
}

// NewUpstream creates a bare repository at dir on the OS filesystem with a
// single root commit on branch and HEAD pointing at it. It plays the role
// of the remote in acquisition tests.
//
// Example:
//
//	upstream, head, err := testutil.NewUpstream(t.TempDir(), "main")
//	url := testutil.FileURL(upstream)
func NewUpstream(dir, branch string) (*git.Repository, plumbing.Hash, error) {
	repo, err := git.Init(dir, git.WithBare())
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return nil, plumbing.ZeroHash, err
	}

	hash, err := AdvanceBranch(repo, branch, TestInitialCommit)
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Underlying().Storer.SetReference(head); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return nil, plumbing.ZeroHash, err
	}

	return repo, hash, nil
}

// FileURL returns the file:// URL go-git uses to reach a repository on the
// local disk.
func FileURL(repo *git.Repository) string {
	return "file://" + filepath.ToSlash(repo.Path())
}

// BranchHash returns the commit the local branch name points at in repo.
func BranchHash(repo *git.Repository, name string) (plumbing.Hash, error) {
	branch, err := repo.LookupBranch(name)
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return plumbing.ZeroHash, err
	}
	return branch.Hash, nil
}
