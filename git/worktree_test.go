package git

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitFile writes path, stages it and commits it on HEAD.
func commitFile(t *testing.T, repo *Repository, path, content, message string) plumbing.Hash {
	t.Helper()

	require.NoError(t, util.WriteFile(repo.Filesystem(), path, []byte(content), 0o644))

	wt, err := repo.Underlying().Worktree()
	require.NoError(t, err)
	_, err = wt.Add(path)
	require.NoError(t, err)

	hash, err := repo.CreateCommit(CommitOptions{Author: "Test User", Email: "test@example.com", Message: message})
	require.NoError(t, err)

	return hash
}

func collectStatus(t *testing.T, repo *Repository) map[string]StatusFlag {
	t.Helper()

	got := make(map[string]StatusFlag)
	err := repo.WalkStatus(func(path string, status StatusFlag) error {
		got[path] = status
		return nil
	})
	require.NoError(t, err)

	return got
}

func TestWalkStatus(t *testing.T) {
	t.Run("clean working tree", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		commitFile(t, repo, "README.md", "hello", "add readme")

		assert.Empty(t, collectStatus(t, repo))
	})

	t.Run("untracked and modified files", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		commitFile(t, repo, "README.md", "hello", "add readme")

		fs := repo.Filesystem()
		require.NoError(t, util.WriteFile(fs, "README.md", []byte("changed"), 0o644))
		require.NoError(t, util.WriteFile(fs, "new.txt", []byte("new"), 0o644))

		got := collectStatus(t, repo)
		assert.Equal(t, StatusWorktreeModified, got["README.md"])
		assert.Equal(t, StatusWorktreeNew, got["new.txt"])
	})

	t.Run("staged file", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		commitFile(t, repo, "README.md", "hello", "add readme")

		require.NoError(t, util.WriteFile(repo.Filesystem(), "staged.txt", []byte("s"), 0o644))
		wt, err := repo.Underlying().Worktree()
		require.NoError(t, err)
		_, err = wt.Add("staged.txt")
		require.NoError(t, err)

		got := collectStatus(t, repo)
		assert.NotZero(t, got["staged.txt"]&StatusIndexNew)
	})

	t.Run("paths are visited in order", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)

		fs := repo.Filesystem()
		for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
			require.NoError(t, util.WriteFile(fs, name, []byte(name), 0o644))
		}

		var order []string
		require.NoError(t, repo.WalkStatus(func(path string, _ StatusFlag) error {
			order = append(order, path)
			return nil
		}))
		assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, order)
	})

	t.Run("visitor error stops the walk", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)

		fs := repo.Filesystem()
		require.NoError(t, util.WriteFile(fs, "a.txt", []byte("a"), 0o644))
		require.NoError(t, util.WriteFile(fs, "b.txt", []byte("b"), 0o644))

		stop := errors.New("stop")
		visited := 0
		err = repo.WalkStatus(func(string, StatusFlag) error {
			visited++
			return stop
		})
		assert.Same(t, stop, err)
		assert.Equal(t, 1, visited)
	})

	t.Run("bare repository has nothing to walk", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()), WithBare())
		require.NoError(t, err)

		assert.Empty(t, collectStatus(t, repo))
	})
}

func TestStatusFlagString(t *testing.T) {
	assert.Equal(t, "current", StatusCurrent.String())
	assert.Equal(t, "untracked", StatusWorktreeNew.String())
	assert.Equal(t, "index-new|modified", (StatusIndexNew | StatusWorktreeModified).String())
}

func readFile(t *testing.T, fs billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestResetHard(t *testing.T) {
	t.Run("updates clean working tree", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		first := commitFile(t, repo, "data.txt", "v1", "v1")
		second := commitFile(t, repo, "data.txt", "v2", "v2")

		require.NoError(t, repo.ResetHard(first))
		assert.Equal(t, "v1", readFile(t, repo.Filesystem(), "data.txt"))

		require.NoError(t, repo.ResetHard(second))
		assert.Equal(t, "v2", readFile(t, repo.Filesystem(), "data.txt"))

		branch, err := repo.LookupBranch("master")
		require.NoError(t, err)
		assert.Equal(t, second, branch.Hash)
	})

	t.Run("refuses dirty working tree", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		first := commitFile(t, repo, "data.txt", "v1", "v1")
		commitFile(t, repo, "data.txt", "v2", "v2")

		require.NoError(t, util.WriteFile(repo.Filesystem(), "data.txt", []byte("local edit"), 0o644))

		err = repo.ResetHard(first)
		require.Error(t, err)
		assert.ErrorIs(t, err, gogit.ErrWorktreeNotClean)
		assert.Equal(t, platformerrors.CodeConflict, platformerrors.GetCode(err))
		assert.Equal(t, "local edit", readFile(t, repo.Filesystem(), "data.txt"))
	})

	t.Run("unknown commit", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()))
		require.NoError(t, err)
		commitFile(t, repo, "data.txt", "v1", "v1")

		err = repo.ResetHard(plumbing.NewHash("2222222222222222222222222222222222222222"))
		require.Error(t, err)
		assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
	})

	t.Run("bare repository", func(t *testing.T) {
		repo, err := Init("/repo", WithFilesystem(memfs.New()), WithBare())
		require.NoError(t, err)

		err = repo.ResetHard(plumbing.ZeroHash)
		assert.ErrorIs(t, err, gogit.ErrIsBareRepository)
	})
}
