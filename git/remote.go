package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// RemoteOperations defines the interface for Git remote network operations.
// This interface allows for testing by enabling mock implementations that
// don't require actual network access.
//
// The default implementation delegates to go-git's transports.
type RemoteOperations interface {
	// Clone clones a remote repository into opts.Path on fs.
	Clone(ctx context.Context, fs billy.Filesystem, opts CloneOptions) (*Repository, error)

	// Fetch downloads objects and refs from the remote repository.
	Fetch(ctx context.Context, repo *Repository, opts FetchOptions) error

	// Push uploads objects and refs to the remote repository.
	Push(ctx context.Context, repo *Repository, opts PushOptions) error
}

type defaultRemoteOps struct{}

// Clone implements RemoteOperations.Clone using go-git's CloneContext.
// A destination directory created by this call is removed again when the
// clone fails.
func (d *defaultRemoteOps) Clone(ctx context.Context, fs billy.Filesystem, opts CloneOptions) (*Repository, error) {
	_, statErr := fs.Stat(opts.Path)
	created := statErr != nil

	if err := fs.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, wrapError(err, "failed to create clone directory")
	}

	repo, err := d.clone(ctx, fs, opts)
	if err != nil {
		if created {
			_ = util.RemoveAll(fs, opts.Path)
		}
		return nil, err
	}

	return repo, nil
}

func (d *defaultRemoteOps) clone(ctx context.Context, fs billy.Filesystem, opts CloneOptions) (*Repository, error) {
	scopedFs, err := fs.Chroot(opts.Path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	storageFs, worktreeFs, err := layout(scopedFs, opts.Bare)
	if err != nil {
		return nil, err
	}

	auth, err := toAuthMethod(opts.Auth)
	if err != nil {
		return nil, err
	}

	cloneOpts := &gogit.CloneOptions{
		URL:           opts.URL,
		Auth:          auth,
		ProxyOptions:  transport.ProxyOptions{URL: opts.Proxy},
		Depth:         opts.Depth,
		SingleBranch:  opts.SingleBranch,
		ReferenceName: opts.ReferenceName,
	}

	storage := filesystem.NewStorage(storageFs, cache.NewObjectLRUDefault())
	repo, err := gogit.CloneContext(ctx, storage, worktreeFs, cloneOpts)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to clone %s", opts.URL))
	}

	return &Repository{
		path: opts.Path,
		repo: repo,
		fs:   scopedFs,
	}, nil
}

// Fetch implements RemoteOperations.Fetch using go-git's FetchContext with
// the remote's configured refspecs. An up-to-date remote is not an error.
func (d *defaultRemoteOps) Fetch(ctx context.Context, repo *Repository, opts FetchOptions) error {
	auth, err := toAuthMethod(opts.Auth)
	if err != nil {
		return err
	}

	err = repo.repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName:   remoteName(opts.RemoteName),
		Auth:         auth,
		ProxyOptions: transport.ProxyOptions{URL: opts.Proxy},
		Depth:        opts.Depth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return wrapError(err, "failed to fetch from remote")
	}

	return nil
}

// Push implements RemoteOperations.Push using go-git's PushContext.
// An up-to-date remote is not an error.
func (d *defaultRemoteOps) Push(ctx context.Context, repo *Repository, opts PushOptions) error {
	auth, err := toAuthMethod(opts.Auth)
	if err != nil {
		return err
	}

	pushOpts := &gogit.PushOptions{
		RemoteName:   remoteName(opts.RemoteName),
		Auth:         auth,
		ProxyOptions: transport.ProxyOptions{URL: opts.Proxy},
		Force:        opts.Force,
	}
	for _, refSpec := range opts.RefSpecs {
		pushOpts.RefSpecs = append(pushOpts.RefSpecs, config.RefSpec(refSpec))
	}

	err = repo.repo.PushContext(ctx, pushOpts)
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return wrapError(err, "failed to push to remote")
	}

	return nil
}

func remoteName(name string) string {
	if name == "" {
		return DefaultRemoteName
	}
	return name
}

func toAuthMethod(auth Auth) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	method, ok := auth.(transport.AuthMethod)
	if !ok {
		return nil, wrapError(fmt.Errorf("invalid auth type %T", auth), "failed to convert auth")
	}
	return method, nil
}

// LookupRemote returns the named remote.
// Returns an ErrNotFound-classified error if it is not configured.
func (r *Repository) LookupRemote(name string) (*Remote, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to look up remote %q", name))
	}

	cfg := remote.Config()
	return &Remote{Name: cfg.Name, URLs: cfg.URLs}, nil
}

// ListRemotes returns all configured remotes for this repository.
func (r *Repository) ListRemotes() ([]Remote, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, wrapError(err, "failed to list remotes")
	}

	result := make([]Remote, 0, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		result = append(result, Remote{
			Name: cfg.Name,
			URLs: cfg.URLs,
		})
	}

	return result, nil
}

// AddRemote adds a new remote to the repository configuration.
// Returns an ErrAlreadyExists-classified error if the name is taken.
func (r *Repository) AddRemote(opts RemoteOptions) error {
	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: opts.Name,
		URLs: []string{opts.URL},
	})
	if err != nil {
		return wrapError(err, "failed to add remote")
	}

	return nil
}

// Fetch downloads objects and refs from the remote into its remote-tracking
// references. The working tree and local branches are left untouched.
//
// Example:
//
//	err := repo.Fetch(ctx, git.FetchOptions{RemoteName: "origin", Auth: auth})
func (r *Repository) Fetch(ctx context.Context, opts FetchOptions) error {
	//nolint:wrapcheck // errors from remoteOps are already wrapped in their implementations
	return r.ops().Fetch(ctx, r, opts)
}

// Push uploads objects and refs to the remote repository.
//
// Example:
//
//	err := repo.Push(ctx, git.PushOptions{
//	    RemoteName: "origin",
//	    RefSpecs:   []string{"refs/heads/main:refs/heads/main"},
//	})
func (r *Repository) Push(ctx context.Context, opts PushOptions) error {
	//nolint:wrapcheck // errors from remoteOps are already wrapped in their implementations
	return r.ops().Push(ctx, r, opts)
}

func (r *Repository) ops() RemoteOperations {
	if r.remoteOps == nil {
		return &defaultRemoteOps{}
	}
	return r.remoteOps
}
