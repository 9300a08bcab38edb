package git

import (
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// StatusFlag is a bit mask describing the state of one path in the working
// tree relative to HEAD and the index. StatusCurrent (no bits set) means the
// path is unchanged.
type StatusFlag uint16

const (
	StatusCurrent StatusFlag = 0

	StatusIndexNew StatusFlag = 1 << iota
	StatusIndexModified
	StatusIndexDeleted
	StatusIndexRenamed
	StatusWorktreeNew
	StatusWorktreeModified
	StatusWorktreeDeleted
	StatusWorktreeRenamed
	StatusIgnored
	StatusConflicted
)

var statusNames = []struct {
	flag StatusFlag
	name string
}{
	{StatusIndexNew, "index-new"},
	{StatusIndexModified, "index-modified"},
	{StatusIndexDeleted, "index-deleted"},
	{StatusIndexRenamed, "index-renamed"},
	{StatusWorktreeNew, "untracked"},
	{StatusWorktreeModified, "modified"},
	{StatusWorktreeDeleted, "deleted"},
	{StatusWorktreeRenamed, "renamed"},
	{StatusIgnored, "ignored"},
	{StatusConflicted, "conflicted"},
}

func (s StatusFlag) String() string {
	if s == StatusCurrent {
		return "current"
	}

	var parts []string
	for _, n := range statusNames {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// StatusVisitor is called for each path by WalkStatus. Returning a non-nil
// error stops the walk; WalkStatus then returns that error unchanged.
type StatusVisitor func(path string, status StatusFlag) error

// WalkStatus enumerates the working tree status in path order and calls
// visit for every entry go-git reports. Ignored files are not reported by
// go-git and therefore never visited. Bare repositories have nothing to
// walk.
func (r *Repository) WalkStatus(visit StatusVisitor) error {
	if r.IsBare() {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return wrapError(err, "failed to get worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return wrapError(err, "failed to get worktree status")
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := visit(path, statusFlag(status[path])); err != nil {
			return err
		}
	}

	return nil
}

func statusFlag(fs *gogit.FileStatus) StatusFlag {
	var flag StatusFlag

	switch fs.Staging {
	case gogit.Added:
		flag |= StatusIndexNew
	case gogit.Modified:
		flag |= StatusIndexModified
	case gogit.Deleted:
		flag |= StatusIndexDeleted
	case gogit.Renamed, gogit.Copied:
		flag |= StatusIndexRenamed
	case gogit.UpdatedButUnmerged:
		flag |= StatusConflicted
	}

	switch fs.Worktree {
	case gogit.Untracked:
		flag |= StatusWorktreeNew
	case gogit.Modified:
		flag |= StatusWorktreeModified
	case gogit.Deleted:
		flag |= StatusWorktreeDeleted
	case gogit.Renamed, gogit.Copied:
		flag |= StatusWorktreeRenamed
	case gogit.UpdatedButUnmerged:
		flag |= StatusConflicted
	}

	return flag
}

// ResetHard moves the checked-out branch to hash and updates the index and
// working tree to match.
//
// The reset is refused with a Conflict-classified error when the working
// tree has any change, so uncommitted work is never overwritten.
func (r *Repository) ResetHard(hash plumbing.Hash) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return wrapError(err, "failed to get worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return wrapError(err, "failed to get worktree status")
	}
	if !status.IsClean() {
		return wrapError(gogit.ErrWorktreeNotClean, "refusing to reset")
	}

	if _, err := r.repo.CommitObject(hash); err != nil {
		return wrapError(err, fmt.Sprintf("failed to look up commit %s", hash))
	}

	if err := wt.Reset(&gogit.ResetOptions{Commit: hash, Mode: gogit.HardReset}); err != nil {
		return wrapError(err, fmt.Sprintf("failed to reset to %s", hash))
	}

	return nil
}
