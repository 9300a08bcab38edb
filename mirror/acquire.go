package mirror

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/gitmirror/git"
	"github.com/jmgilman/go/gitmirror/locator"
)

// Acquire returns the mirror of branch of remote, cloning it on first use
// and synchronizing it with its upstream on later use.
//
// Only local problems fail Acquire: a cache path that exists but is not a
// directory, a mirror that cannot be opened, or a failed clone. Everything
// that goes wrong on the remote side (fetch, push, missing origin,
// divergence, dirty tree) is reported and described by the SyncResult while
// the existing, possibly stale, mirror is still returned.
//
// Acquisitions of the same mirror are serialized with a lock file.
func (m *Mirror) Acquire(ctx context.Context, remote locator.Remote, branch string) (*git.Repository, SyncResult, error) {
	path := m.Path(remote.URL, branch)

	unlock, err := lockPath(ctx, path, m.lockTimeout)
	if err != nil {
		m.reporter.Report(SeverityError, "Unable to lock git cache at %s: %v", path, err)
		return nil, SyncResult{Outcome: OutcomeError, Err: err}, err
	}
	defer unlock()

	repo, result, err := m.acquire(ctx, path, remote, branch)
	if err != nil {
		return nil, SyncResult{Outcome: OutcomeError, Err: err}, err
	}

	m.updateIndex(ctx, remote.URL, branch, result.Outcome)
	return repo, result, nil
}

func (m *Mirror) acquire(ctx context.Context, path string, remote locator.Remote, branch string) (*git.Repository, SyncResult, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		m.reporter.Report(SeverityError, "Local git cache at %s is corrupt", path)
		return nil, SyncResult{}, platformerrors.Newf(platformerrors.CodeConflict, "git cache at %s is not a directory", path)

	case err == nil:
		return m.update(ctx, path, remote, branch)

	case errors.Is(err, fs.ErrNotExist):
		return m.create(ctx, path, remote, branch)

	default:
		m.reporter.Report(SeverityError, "Unable to access git cache at %s: %v", path, err)
		return nil, SyncResult{}, platformerrors.Wrapf(err, platformerrors.CodeInternal, "failed to stat %s", path)
	}
}

// update opens an existing mirror and runs the decision engine on it.
func (m *Mirror) update(ctx context.Context, path string, remote locator.Remote, branch string) (*git.Repository, SyncResult, error) {
	repo, err := git.Open(path, m.repoOptions()...)
	if err != nil {
		m.reporter.Report(SeverityError, "Unable to open git cache repository at %s: %v", path, err)
		return nil, SyncResult{}, err
	}

	proxy := m.conn.ProxyFor(remote)
	m.persistProxy(repo, proxy)

	if _, err := repo.LookupRemote(git.DefaultRemoteName); err != nil {
		m.reporter.Report(SeverityWarning, "Repository %s origin lookup failed (%v)", remote, err)
		return repo, SyncResult{Outcome: OutcomeError, Err: err}, nil
	}

	auth, err := m.conn.Auth(remote, m.baseDir)
	if err != nil {
		m.reporter.Report(SeverityWarning, "Unable to load credentials for %s: %v", remote, err)
		return repo, SyncResult{Outcome: OutcomeError, Err: err}, nil
	}

	result := Synchronize(ctx, repo, branch,
		WithSyncReporter(m.reporter),
		WithSyncAuth(auth),
		WithSyncProxy(proxy),
	)
	return repo, result, nil
}

// create clones remote into path with branch checked out.
func (m *Mirror) create(ctx context.Context, path string, remote locator.Remote, branch string) (*git.Repository, SyncResult, error) {
	auth, err := m.conn.Auth(remote, m.baseDir)
	if err != nil {
		m.reporter.Report(SeverityError, "Unable to load credentials for %s: %v", remote, err)
		return nil, SyncResult{}, err
	}

	proxy := m.conn.ProxyFor(remote)
	opts := append(m.repoOptions(),
		git.WithReferenceName(plumbing.NewBranchReferenceName(branch)),
		git.WithAuth(auth),
		git.WithProxy(proxy),
	)

	repo, err := git.Clone(ctx, remote.URL, path, opts...)
	if err != nil {
		m.reporter.Report(SeverityError, "git clone of %s failed (%v)", remote, err)
		return nil, SyncResult{}, err
	}

	m.persistProxy(repo, proxy)

	result := SyncResult{Outcome: OutcomeCloned}
	if b, err := repo.LookupBranch(branch); err == nil {
		result.Local, result.Remote = b.Hash, b.Hash
	}
	return repo, result, nil
}

// persistProxy writes http.proxy so later tools working in the mirror use
// the same proxy.
func (m *Mirror) persistProxy(repo *git.Repository, proxy string) {
	if proxy == "" {
		return
	}
	if err := repo.SetConfigOption("http", "proxy", proxy); err != nil {
		m.reporter.Report(SeverityWarning, "Unable to set http.proxy in %s: %v", repo.Path(), err)
	}
}
