package git

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// applyOptions resolves the filesystem and path every factory function works
// against. Without an explicit filesystem the OS root is used and path is
// made absolute so it can be chrooted into.
func applyOptions(path string, opts []RepositoryOption) (*repositoryOptions, string, error) {
	options := &repositoryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.fs == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", wrapError(err, "failed to resolve repository path")
		}
		options.fs = osfs.New("/")
		path = abs
	}
	if options.remoteOps == nil {
		options.remoteOps = &defaultRemoteOps{}
	}

	return options, path, nil
}

// Init creates a new Git repository at the specified path.
//
// By default Init creates a standard (non-bare) repository on the local
// filesystem. Use WithBare for a repository without a working tree and
// WithFilesystem to place it on another billy filesystem.
//
// Examples:
//
//	repo, err := git.Init("/path/to/repo")
//	repo, err := git.Init("/path/to/repo.git", git.WithBare())
//	repo, err := git.Init("/repo", git.WithFilesystem(memfs.New()))
func Init(path string, opts ...RepositoryOption) (*Repository, error) {
	options, path, err := applyOptions(path, opts)
	if err != nil {
		return nil, err
	}

	fs := options.fs
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return nil, wrapError(err, "failed to create repository directory")
	}

	scopedFs, err := fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	storageFs, worktreeFs, err := layout(scopedFs, options.bare)
	if err != nil {
		return nil, err
	}

	storage := filesystem.NewStorage(storageFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storage, worktreeFs)
	if err != nil {
		return nil, wrapError(err, "failed to initialize repository")
	}

	return &Repository{
		path:      path,
		repo:      repo,
		fs:        scopedFs,
		remoteOps: options.remoteOps,
	}, nil
}

// Open opens an existing Git repository at the specified path.
//
// A directory holding a .git subdirectory is opened as a standard
// repository; anything else is opened as a bare repository rooted at path.
//
// Returns an ErrNotFound-classified error if no repository exists there.
//
// Examples:
//
//	repo, err := git.Open("/path/to/repo")
//	repo, err := git.Open("/repo", git.WithFilesystem(fs))
func Open(path string, opts ...RepositoryOption) (*Repository, error) {
	options, path, err := applyOptions(path, opts)
	if err != nil {
		return nil, err
	}

	scopedFs, err := options.fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	dotGitStat, dotGitErr := scopedFs.Stat(gogit.GitDirName)
	bare := dotGitErr != nil || !dotGitStat.IsDir()

	storageFs, worktreeFs, err := layout(scopedFs, bare)
	if err != nil {
		return nil, err
	}

	storage := filesystem.NewStorage(storageFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Open(storage, worktreeFs)
	if err != nil {
		return nil, wrapError(err, "failed to open repository")
	}

	return &Repository{
		path:      path,
		repo:      repo,
		fs:        scopedFs,
		remoteOps: options.remoteOps,
	}, nil
}

// Clone clones url into path and returns the new repository.
//
// By default the remote's HEAD is cloned with a working tree. Use
// WithReferenceName to check out a specific branch, WithBare to skip the
// working tree, and WithAuth/WithProxy for transport settings. The clone is
// performed through the configured RemoteOperations.
//
// Examples:
//
//	repo, err := git.Clone(ctx, "https://github.com/org/repo", "/cache/repo")
//
//	repo, err := git.Clone(ctx, url, dir,
//	    git.WithReferenceName(plumbing.NewBranchReferenceName("main")),
//	    git.WithAuth(auth))
func Clone(ctx context.Context, url, path string, opts ...RepositoryOption) (*Repository, error) {
	options, path, err := applyOptions(path, opts)
	if err != nil {
		return nil, err
	}

	cloneOpts := CloneOptions{
		URL:           url,
		Path:          path,
		Auth:          options.auth,
		Proxy:         options.proxy,
		Bare:          options.bare,
		Depth:         options.depth,
		SingleBranch:  options.singleBranch,
		ReferenceName: options.referenceName,
	}

	repo, err := options.remoteOps.Clone(ctx, options.fs, cloneOpts)
	if err != nil {
		//nolint:wrapcheck // errors from remoteOps are already wrapped in their implementations
		return nil, err
	}
	repo.remoteOps = options.remoteOps

	return repo, nil
}

// layout returns the storage and worktree filesystems for a repository
// rooted at fs. Bare repositories keep their storage at the root and have
// no worktree.
func layout(fs billy.Filesystem, bare bool) (billy.Filesystem, billy.Filesystem, error) {
	if bare {
		return fs, nil, nil
	}

	dotGitFs, err := fs.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, nil, wrapError(err, "failed to scope filesystem to .git")
	}

	return dotGitFs, fs, nil
}

// Underlying returns the underlying go-git Repository for advanced operations
// not covered by this wrapper.
func (r *Repository) Underlying() *gogit.Repository {
	return r.repo
}

// Filesystem returns the billy.Filesystem scoped to the repository root:
// the working tree for standard repositories, the storage directory for bare
// ones.
func (r *Repository) Filesystem() billy.Filesystem {
	return r.fs
}

// Path returns the path the repository was opened, initialized or cloned at.
func (r *Repository) Path() string {
	return r.path
}

// IsBare reports whether the repository has no working tree.
func (r *Repository) IsBare() bool {
	_, err := r.repo.Worktree()
	return errors.Is(err, gogit.ErrIsBareRepository)
}

// SetConfigOption sets key in section of the repository configuration and
// persists it, e.g. SetConfigOption("http", "proxy", "http://proxy:3128").
func (r *Repository) SetConfigOption(section, key, value string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return wrapError(err, "failed to read repository config")
	}

	cfg.Raw.Section(section).SetOption(key, value)

	if err := r.repo.Storer.SetConfig(cfg); err != nil {
		return wrapError(err, "failed to save repository config")
	}

	return nil
}

// ConfigOption returns the value of key in section, or "" when unset.
func (r *Repository) ConfigOption(section, key string) (string, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", wrapError(err, "failed to read repository config")
	}

	return cfg.Raw.Section(section).Option(key), nil
}
