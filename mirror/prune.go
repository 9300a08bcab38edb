package mirror

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/go/errors"
)

// PruneStrategy decides whether a recorded mirror should be removed.
type PruneStrategy interface {
	ShouldPrune(entry IndexEntry, now time.Time) bool
}

type pruneOlderThan struct {
	age time.Duration
}

func (p pruneOlderThan) ShouldPrune(entry IndexEntry, now time.Time) bool {
	return now.Sub(entry.LastAccess) > p.age
}

// PruneOlderThan removes mirrors not accessed within age.
func PruneOlderThan(age time.Duration) PruneStrategy {
	return pruneOlderThan{age: age}
}

type pruneRemote struct {
	remote string
}

func (p pruneRemote) ShouldPrune(entry IndexEntry, _ time.Time) bool {
	return entry.Remote == p.remote
}

// PruneRemote removes every mirror of remote, whatever the branch. remote
// must be normalized.
func PruneRemote(remote string) PruneStrategy {
	return pruneRemote{remote: remote}
}

// Prune removes the mirrors matched by any of strategies and returns the
// removed entries. Without strategies nothing is removed.
//
// Mirrors are removed one at a time under their own lock, so a mirror in
// use is waited for rather than pulled out from under its user. Unpushed
// local commits are lost with the mirror.
//
// Example:
//
//	removed, err := m.Prune(ctx, mirror.PruneOlderThan(30*24*time.Hour))
func (m *Mirror) Prune(ctx context.Context, strategies ...PruneStrategy) ([]IndexEntry, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	now := m.now()
	var removed []IndexEntry
	for _, entry := range entries {
		if !matchesAny(strategies, entry, now) {
			continue
		}

		if err := m.remove(ctx, entry); err != nil {
			return removed, err
		}
		removed = append(removed, entry)
		m.reporter.Report(SeverityInfo, "Removed git cache of %s branch %s", entry.Remote, entry.Branch)
	}

	if len(removed) == 0 {
		return nil, nil
	}

	if err := m.forget(ctx, removed); err != nil {
		return removed, err
	}

	return removed, nil
}

func matchesAny(strategies []PruneStrategy, entry IndexEntry, now time.Time) bool {
	for _, strategy := range strategies {
		if strategy.ShouldPrune(entry, now) {
			return true
		}
	}
	return false
}

// remove deletes the mirror directory of entry and its lock file under the
// mirror lock.
func (m *Mirror) remove(ctx context.Context, entry IndexEntry) error {
	unlock, err := lockPath(ctx, m.Path(entry.Remote, entry.Branch), m.lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	if err := util.RemoveAll(m.fs, entry.Digest); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInternal, "failed to remove git cache %s", entry.Digest)
	}

	if err := m.fs.Remove(entry.Digest + lockSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return platformerrors.Wrapf(err, platformerrors.CodeInternal, "failed to remove lock of git cache %s", entry.Digest)
	}

	return nil
}

// forget drops removed entries from the index. An entry accessed again
// since it was listed has been re-cloned and stays.
func (m *Mirror) forget(ctx context.Context, removed []IndexEntry) error {
	unlock, err := lockPath(ctx, m.indexPath(), m.lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	index, err := loadIndex(m.fs)
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to load mirror index")
	}

	for _, entry := range removed {
		current, ok := index.Mirrors[entry.Digest]
		if ok && current.LastAccess.Equal(entry.LastAccess) {
			delete(index.Mirrors, entry.Digest)
		}
	}

	if err := index.save(m.fs); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to save mirror index")
	}

	return nil
}
