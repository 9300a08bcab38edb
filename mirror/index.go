package mirror

import (
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/go/errors"
)

const (
	indexVersion  = "1"
	indexFileName = "index.json"
)

// IndexEntry describes one mirror under the base directory. Digest names
// are one-way, so the index is the only record of which remote and branch
// a directory holds.
type IndexEntry struct {
	Digest      string    `json:"digest"`
	Remote      string    `json:"remote"`
	Branch      string    `json:"branch"`
	CreatedAt   time.Time `json:"created_at"`
	LastAccess  time.Time `json:"last_access"`
	LastOutcome string    `json:"last_outcome"`
}

// mirrorIndex is the on-disk index.json.
type mirrorIndex struct {
	Version string                 `json:"version"`
	Mirrors map[string]*IndexEntry `json:"mirrors"`
}

func newMirrorIndex() *mirrorIndex {
	return &mirrorIndex{Version: indexVersion, Mirrors: make(map[string]*IndexEntry)}
}

// loadIndex reads index.json from fsys. A missing file is an empty index.
func loadIndex(fsys billy.Filesystem) (*mirrorIndex, error) {
	data, err := util.ReadFile(fsys, indexFileName)
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return newMirrorIndex(), nil
	case err != nil:
		return nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to read mirror index")
	}

	var index mirrorIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "mirror index is not valid JSON")
	}
	if index.Version != indexVersion {
		return nil, platformerrors.Newf(platformerrors.CodeInvalidInput,
			"mirror index has version %q, want %q", index.Version, indexVersion)
	}
	if index.Mirrors == nil {
		index.Mirrors = make(map[string]*IndexEntry)
	}

	return &index, nil
}

// save replaces index.json through a temporary file so readers never see
// a partial write.
func (idx *mirrorIndex) save(fsys billy.Filesystem) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to encode mirror index")
	}

	tmp := indexFileName + ".tmp"
	if err := util.WriteFile(fsys, tmp, data, 0o644); err != nil {
		_ = fsys.Remove(tmp)
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to write mirror index")
	}

	if err := fsys.Rename(tmp, indexFileName); err != nil {
		_ = fsys.Remove(tmp)
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to replace mirror index")
	}

	return nil
}

// record notes an access to the mirror of branch of remote.
func (idx *mirrorIndex) record(remote, branch string, outcome Outcome, now time.Time) {
	digest := Digest(remote, branch)

	entry, ok := idx.Mirrors[digest]
	if !ok {
		entry = &IndexEntry{
			Digest:    digest,
			Remote:    remote,
			Branch:    branch,
			CreatedAt: now,
		}
		idx.Mirrors[digest] = entry
	}

	entry.LastAccess = now
	entry.LastOutcome = outcome.String()
}

// sorted returns the entries ordered by remote, then branch.
func (idx *mirrorIndex) sorted() []IndexEntry {
	entries := make([]IndexEntry, 0, len(idx.Mirrors))
	for _, entry := range idx.Mirrors {
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Remote != entries[j].Remote {
			return entries[i].Remote < entries[j].Remote
		}
		return entries[i].Branch < entries[j].Branch
	})

	return entries
}

// updateIndex records the access under the index lock. Index problems are
// reported, never returned: the index is bookkeeping, not the cache.
func (m *Mirror) updateIndex(ctx context.Context, remote, branch string, outcome Outcome) {
	unlock, err := lockPath(ctx, m.indexPath(), m.lockTimeout)
	if err != nil {
		m.reporter.Report(SeverityWarning, "Unable to lock mirror index: %v", err)
		return
	}
	defer unlock()

	index, err := loadIndex(m.fs)
	if err != nil {
		m.reporter.Report(SeverityWarning, "Unable to load mirror index: %v", err)
		return
	}

	index.record(remote, branch, outcome, m.now())

	if err := index.save(m.fs); err != nil {
		m.reporter.Report(SeverityWarning, "Unable to save mirror index: %v", err)
	}
}

// List returns the mirrors recorded in the index, ordered by remote and
// branch.
func (m *Mirror) List() ([]IndexEntry, error) {
	index, err := loadIndex(m.fs)
	if err != nil {
		return nil, err
	}
	return index.sorted(), nil
}
