package testutil

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryRepo(t *testing.T) {
	t.Run("creates valid repository", func(t *testing.T) {
		repo, fs, err := NewMemoryRepo()
		require.NoError(t, err)
		require.NotNil(t, repo)
		require.NotNil(t, fs)

		assert.NotNil(t, repo.Underlying())
		assert.NotNil(t, repo.Filesystem())
		assert.False(t, repo.IsBare())
	})

	t.Run("filesystem is usable", func(t *testing.T) {
		_, fs, err := NewMemoryRepo()
		require.NoError(t, err)

		file, err := fs.Create("test.txt")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		_, err = file.Write([]byte("test content"))
		require.NoError(t, err)

		info, err := fs.Stat("test.txt")
		require.NoError(t, err)
		assert.Equal(t, "test.txt", info.Name())
	})
}

func TestNewMemoryBareRepo(t *testing.T) {
	repo, err := NewMemoryBareRepo()
	require.NoError(t, err)
	assert.True(t, repo.IsBare())
}

func TestCreateTestCommit(t *testing.T) {
	t.Run("commit has message and author", func(t *testing.T) {
		repo, _, err := NewMemoryRepo()
		require.NoError(t, err)

		hash, err := CreateTestCommit(repo, "Custom test message")
		require.NoError(t, err)
		assert.False(t, hash.IsZero())

		commit, err := repo.Underlying().CommitObject(hash)
		require.NoError(t, err)
		assert.Equal(t, "Custom test message", commit.Message)
		assert.Equal(t, TestAuthor, commit.Author.Name)
		assert.Equal(t, TestEmail, commit.Author.Email)
	})

	t.Run("multiple commits chain", func(t *testing.T) {
		repo, _, err := NewMemoryRepo()
		require.NoError(t, err)

		hash1, err := CreateTestCommit(repo, "First commit")
		require.NoError(t, err)
		hash2, err := CreateTestCommit(repo, "Second commit")
		require.NoError(t, err)

		commit, err := repo.Underlying().CommitObject(hash2)
		require.NoError(t, err)
		assert.Equal(t, []plumbing.Hash{hash1}, commit.ParentHashes)
	})
}

func TestCreateTestCommitWithFile(t *testing.T) {
	repo, fs, err := NewMemoryRepo()
	require.NoError(t, err)

	hash, err := CreateTestCommitWithFile(repo, fs, TestFilePath, TestFileContent, "Add README")
	require.NoError(t, err)

	commit, err := repo.Underlying().CommitObject(hash)
	require.NoError(t, err)
	file, err := commit.File(TestFilePath)
	require.NoError(t, err)
	content, err := file.Contents()
	require.NoError(t, err)
	assert.Equal(t, TestFileContent, content)
}

func TestCreateObjectCommit(t *testing.T) {
	t.Run("works on bare repositories", func(t *testing.T) {
		repo, err := NewMemoryBareRepo()
		require.NoError(t, err)

		root, err := CreateObjectCommit(repo, TestInitialCommit)
		require.NoError(t, err)
		child, err := CreateObjectCommit(repo, TestCommitMessage, root)
		require.NoError(t, err)

		commit, err := repo.Underlying().CommitObject(child)
		require.NoError(t, err)
		assert.Equal(t, []plumbing.Hash{root}, commit.ParentHashes)
	})

	t.Run("identical content yields distinct commits", func(t *testing.T) {
		repo, err := NewMemoryBareRepo()
		require.NoError(t, err)

		a, err := CreateObjectCommit(repo, TestCommitMessage)
		require.NoError(t, err)
		b, err := CreateObjectCommit(repo, TestCommitMessage)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestAdvanceBranch(t *testing.T) {
	repo, err := NewMemoryBareRepo()
	require.NoError(t, err)

	first, err := AdvanceBranch(repo, TestBranchMain, TestInitialCommit)
	require.NoError(t, err)
	second, err := AdvanceBranch(repo, TestBranchMain, TestCommitMessage)
	require.NoError(t, err)

	tip, err := BranchHash(repo, TestBranchMain)
	require.NoError(t, err)
	assert.Equal(t, second, tip)

	commit, err := repo.Underlying().CommitObject(second)
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{first}, commit.ParentHashes)
}

func TestShapeAsClone(t *testing.T) {
	repo, _, err := NewMemoryRepo()
	require.NoError(t, err)

	hash, err := ShapeAsClone(repo, TestRepoURL, TestBranchMain)
	require.NoError(t, err)

	branch, err := repo.LookupBranch(TestBranchMain)
	require.NoError(t, err)
	assert.Equal(t, hash, branch.Hash)
	assert.True(t, branch.IsHead)

	upstream, err := repo.Upstream(TestBranchMain)
	require.NoError(t, err)
	assert.Equal(t, hash, upstream.Hash)
	assert.Equal(t, TestRemoteName, upstream.Remote)

	remote, err := repo.LookupRemote(TestRemoteName)
	require.NoError(t, err)
	assert.Equal(t, []string{TestRepoURL}, remote.URLs)

	wt, err := repo.Underlying().Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean())
}

func TestNewUpstream(t *testing.T) {
	dir := t.TempDir()

	upstream, head, err := NewUpstream(dir, TestBranchMain)
	require.NoError(t, err)
	assert.True(t, upstream.IsBare())

	tip, err := BranchHash(upstream, TestBranchMain)
	require.NoError(t, err)
	assert.Equal(t, head, tip)
	assert.Equal(t, "file://"+dir, FileURL(upstream))
}
