package mirror

import (
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	platformerrors "github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/gitmirror/git"
)

// Mirror manages the mirrors under one base directory.
//
// A Mirror is safe for concurrent use. Work on the same mirror is
// serialized by a lock file next to its directory; different mirrors never
// contend.
type Mirror struct {
	baseDir     string
	fs          billy.Filesystem // rooted at baseDir
	conn        ConnectionContext
	reporter    Reporter
	remoteOps   git.RemoteOperations
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithReporter sets the sink for every notable event. Defaults to Discard.
func WithReporter(r Reporter) Option {
	return func(m *Mirror) {
		m.reporter = r
	}
}

// WithConnection sets credentials and proxy for network operations.
func WithConnection(conn ConnectionContext) Option {
	return func(m *Mirror) {
		m.conn = conn
	}
}

// WithRemoteOperations replaces the network layer, primarily for tests.
func WithRemoteOperations(ops git.RemoteOperations) Option {
	return func(m *Mirror) {
		m.remoteOps = ops
	}
}

// WithLockTimeout bounds the wait for a mirror held by someone else.
// Zero waits until the context is done.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		m.lockTimeout = d
	}
}

// New returns a Mirror keeping its mirrors under baseDir, which is created
// if needed.
//
// Example:
//
//	m, err := mirror.New("/var/cache/gitmirror",
//	    mirror.WithConnection(mirror.ConnectionContext{Passphrase: token}),
//	    mirror.WithReporter(mirror.NewLogReporter(log)))
func New(baseDir string, opts ...Option) (*Mirror, error) {
	if baseDir == "" {
		return nil, platformerrors.New(platformerrors.CodeInvalidInput, "base directory is required")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "failed to resolve base directory")
	}

	fs := osfs.New(abs)
	if err := fs.MkdirAll(".", 0o755); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to create base directory")
	}

	m := &Mirror{
		baseDir:     abs,
		fs:          fs,
		reporter:    Discard,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// BaseDir returns the absolute directory holding the mirrors.
func (m *Mirror) BaseDir() string {
	return m.baseDir
}

// Path returns the directory of the mirror of branch of remote. remote must
// be normalized.
func (m *Mirror) Path(remote, branch string) string {
	return LocalPath(m.baseDir, remote, branch)
}

func (m *Mirror) indexPath() string {
	return filepath.Join(m.baseDir, indexFileName)
}

func (m *Mirror) repoOptions() []git.RepositoryOption {
	if m.remoteOps == nil {
		return nil
	}
	return []git.RepositoryOption{git.WithRemoteOperations(m.remoteOps)}
}
