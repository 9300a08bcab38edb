// Package testutil provides in-memory testing utilities for the git package
// and its consumers. It includes helpers for creating in-memory repositories,
// fabricating commits directly in the object store, and shaping a repository
// to look like a fresh clone, so tests run without network access.
package testutil

import (
	"sync/atomic"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jmgilman/go/gitmirror/git"
)

// commitEpoch anchors the timestamps of object commits. Every commit gets a
// distinct second so two commits with equal content never share a hash.
var (
	commitEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	commitSeq   atomic.Int64
)

// NewMemoryRepo creates a new in-memory Git repository for testing.
// It uses billy's memory filesystem (memfs) to provide a fully functional
// repository without touching the actual filesystem.
//
// The returned filesystem is the repository's working tree. All operations
// are in-memory and will not persist after the test completes.
//
// Example:
//
//	repo, fs, err := testutil.NewMemoryRepo()
//	if err != nil {
//	    t.Fatal(err)
//	}
func NewMemoryRepo(opts ...git.RepositoryOption) (*git.Repository, billy.Filesystem, error) {
	fs := memfs.New()

	repo, err := git.Init("/", append([]git.RepositoryOption{git.WithFilesystem(fs)}, opts...)...)
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return nil, nil, err
	}

	return repo, fs, nil
}

// NewMemoryBareRepo creates a new in-memory bare repository.
func NewMemoryBareRepo(opts ...git.RepositoryOption) (*git.Repository, error) {
	repo, _, err := NewMemoryRepo(append([]git.RepositoryOption{git.WithBare()}, opts...)...)
	return repo, err
}

// CreateTestCommit creates an empty commit on HEAD with the standard test
// author and the provided message. The repository must have a working tree.
//
// Example:
//
//	hash, err := testutil.CreateTestCommit(repo, "Initial commit")
func CreateTestCommit(repo *git.Repository, message string) (plumbing.Hash, error) {
	//nolint:wrapcheck // Test utility - errors from git package are already wrapped
	return repo.CreateCommit(git.CommitOptions{
		Author:     TestAuthor,
		Email:      TestEmail,
		Message:    message,
		AllowEmpty: true,
	})
}

// CreateTestFile creates a file with the specified content in the given
// filesystem, truncating any existing file.
//
// Example:
//
//	err := testutil.CreateTestFile(fs, "README.md", "# Test Repository")
func CreateTestFile(fs billy.Filesystem, path, content string) error {
	file, err := fs.Create(path)
	if err != nil {
		//nolint:wrapcheck // Test utility - simple file operation error
		return err
	}
	defer func() {
		_ = file.Close() // Ignore close error in test utility
	}()

	_, err = file.Write([]byte(content))
	//nolint:wrapcheck // Test utility - simple file operation error
	return err
}

// CreateTestCommitWithFile writes path, stages it and commits it.
//
// Example:
//
//	hash, err := testutil.CreateTestCommitWithFile(
//	    repo, fs, "README.md", "# Test", "Add README")
func CreateTestCommitWithFile(repo *git.Repository, fs billy.Filesystem, path, content, message string) (plumbing.Hash, error) {
	if err := CreateTestFile(fs, path, content); err != nil {
		return plumbing.ZeroHash, err
	}

	wt, err := repo.Underlying().Worktree()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}

	if _, err := wt.Add(path); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}

	//nolint:wrapcheck // Test utility - errors from git package are already wrapped
	return repo.CreateCommit(git.CommitOptions{
		Author:  TestAuthor,
		Email:   TestEmail,
		Message: message,
	})
}

// CreateObjectCommit writes a commit with an empty tree and the given
// parents straight into the object store. No reference is updated, so this
// works for bare repositories and for fabricating divergent histories.
func CreateObjectCommit(repo *git.Repository, message string, parents ...plumbing.Hash) (plumbing.Hash, error) {
	storer := repo.Underlying().Storer

	treeObj := storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(treeObj); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}
	treeHash, err := storer.SetEncodedObject(treeObj)
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}

	sig := object.Signature{
		Name:  TestAuthor,
		Email: TestEmail,
		When:  commitEpoch.Add(time.Duration(commitSeq.Add(1)) * time.Second),
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}

	commitObj := storer.NewEncodedObject()
	if err := commit.Encode(commitObj); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}

	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return storer.SetEncodedObject(commitObj)
}

// AdvanceRef adds an object commit on top of refName (or a root commit when
// refName does not exist yet) and points refName at it.
func AdvanceRef(repo *git.Repository, refName plumbing.ReferenceName, message string) (plumbing.Hash, error) {
	var parents []plumbing.Hash
	if ref, err := repo.Underlying().Reference(refName, true); err == nil {
		parents = append(parents, ref.Hash())
	}

	hash, err := CreateObjectCommit(repo, message, parents...)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if err := repo.SetReference(refName, hash); err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return plumbing.ZeroHash, err
	}

	return hash, nil
}

// AdvanceBranch is AdvanceRef for the local branch name.
func AdvanceBranch(repo *git.Repository, name, message string) (plumbing.Hash, error) {
	return AdvanceRef(repo, plumbing.NewBranchReferenceName(name), message)
}

// AdvanceRemoteBranch is AdvanceRef for origin's remote-tracking branch
// name, simulating a fetch that brought in a new upstream commit.
func AdvanceRemoteBranch(repo *git.Repository, name, message string) (plumbing.Hash, error) {
	return AdvanceRef(repo, plumbing.NewRemoteReferenceName(TestRemoteName, name), message)
}

// ShapeAsClone makes repo look like a fresh single-branch clone of url:
// an origin remote, a root commit on branch and on origin/branch, branch
// tracking origin/branch and HEAD pointing at branch. The working tree of a
// non-bare repository stays clean because the commit has an empty tree.
//
// Returns the hash both branches point at.
func ShapeAsClone(repo *git.Repository, url, branch string) (plumbing.Hash, error) {
	if err := repo.AddRemote(git.RemoteOptions{Name: TestRemoteName, URL: url}); err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return plumbing.ZeroHash, err
	}

	hash, err := CreateObjectCommit(repo, TestInitialCommit)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	local := plumbing.NewBranchReferenceName(branch)
	refs := []plumbing.ReferenceName{local, plumbing.NewRemoteReferenceName(TestRemoteName, branch)}
	for _, refName := range refs {
		if err := repo.SetReference(refName, hash); err != nil {
			//nolint:wrapcheck // Test utility - errors from git package are already wrapped
			return plumbing.ZeroHash, err
		}
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, local)
	if err := repo.Underlying().Storer.SetReference(head); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return plumbing.ZeroHash, err
	}

	if err := repo.SetUpstream(branch, TestRemoteName, branch); err != nil {
		//nolint:wrapcheck // Test utility - errors from git package are already wrapped
		return plumbing.ZeroHash, err
	}

	return hash, nil
}
