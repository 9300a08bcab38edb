package mirror

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/gitmirror/git"
	"github.com/jmgilman/go/gitmirror/git/testutil"
)

// fakeRemote implements git.RemoteOperations without a network. Clone
// shapes a fresh repository like a single-branch clone; Fetch does nothing
// unless onFetch is set; Push records the request and moves the
// remote-tracking ref the way a real push does.
type fakeRemote struct {
	mu sync.Mutex

	cloneErr error
	fetchErr error
	pushErr  error
	onFetch  func(repo *git.Repository) error

	clones  []git.CloneOptions
	fetches []git.FetchOptions
	pushes  []git.PushOptions
}

func (f *fakeRemote) Clone(_ context.Context, fs billy.Filesystem, opts git.CloneOptions) (*git.Repository, error) {
	f.mu.Lock()
	f.clones = append(f.clones, opts)
	f.mu.Unlock()

	if f.cloneErr != nil {
		return nil, f.cloneErr
	}

	repo, err := git.Init(opts.Path, git.WithFilesystem(fs))
	if err != nil {
		return nil, err
	}
	if _, err := testutil.ShapeAsClone(repo, opts.URL, opts.ReferenceName.Short()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (f *fakeRemote) Fetch(_ context.Context, repo *git.Repository, opts git.FetchOptions) error {
	f.mu.Lock()
	f.fetches = append(f.fetches, opts)
	f.mu.Unlock()

	if f.fetchErr != nil {
		return f.fetchErr
	}
	if f.onFetch != nil {
		return f.onFetch(repo)
	}
	return nil
}

func (f *fakeRemote) Push(_ context.Context, repo *git.Repository, opts git.PushOptions) error {
	f.mu.Lock()
	f.pushes = append(f.pushes, opts)
	f.mu.Unlock()

	if f.pushErr != nil {
		return f.pushErr
	}

	for _, spec := range opts.RefSpecs {
		src, dst, _ := strings.Cut(strings.TrimPrefix(spec, "+"), ":")

		ref, err := repo.Underlying().Reference(plumbing.ReferenceName(src), true)
		if err != nil {
			return err
		}
		tracking := plumbing.NewRemoteReferenceName(opts.RemoteName, plumbing.ReferenceName(dst).Short())
		if err := repo.SetReference(tracking, ref.Hash()); err != nil {
			return err
		}
	}

	return nil
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

type reportEvent struct {
	severity Severity
	message  string
}

// recordingReporter keeps every report for assertions.
type recordingReporter struct {
	mu     sync.Mutex
	events []reportEvent
}

func (r *recordingReporter) Report(severity Severity, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, reportEvent{severity: severity, message: fmt.Sprintf(format, args...)})
}

func (r *recordingReporter) severities() []Severity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Severity, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.severity)
	}
	return out
}

// newClonedMemoryRepo returns an in-memory mirror of branch "main" whose
// local branch and origin/main both point at the returned commit.
func newClonedMemoryRepo(t *testing.T, remote *fakeRemote, bare bool) (*git.Repository, billy.Filesystem, plumbing.Hash) {
	t.Helper()

	opts := []git.RepositoryOption{git.WithRemoteOperations(remote)}
	var (
		repo *git.Repository
		fs   billy.Filesystem
		err  error
	)
	if bare {
		repo, err = testutil.NewMemoryBareRepo(opts...)
	} else {
		repo, fs, err = testutil.NewMemoryRepo(opts...)
	}
	require.NoError(t, err)

	hash, err := testutil.ShapeAsClone(repo, testutil.TestRepoURL, testutil.TestBranchMain)
	require.NoError(t, err)

	return repo, fs, hash
}

func branchHash(t *testing.T, repo *git.Repository, name string) plumbing.Hash {
	t.Helper()
	hash, err := testutil.BranchHash(repo, name)
	require.NoError(t, err)
	return hash
}

func remoteHash(t *testing.T, repo *git.Repository, name string) plumbing.Hash {
	t.Helper()
	ref, err := repo.Underlying().Reference(plumbing.NewRemoteReferenceName(testutil.TestRemoteName, name), true)
	require.NoError(t, err)
	return ref.Hash()
}
