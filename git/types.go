package git

import (
	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultRemoteName is the remote every mirror is cloned from.
const DefaultRemoteName = "origin"

// Repository wraps a go-git repository together with the billy filesystem it
// lives on and the RemoteOperations used for all network access.
type Repository struct {
	path      string
	repo      *gogit.Repository
	fs        billy.Filesystem
	remoteOps RemoteOperations
}

// Branch is a value type describing a branch reference.
//
// For local branches IsHead reports whether the branch is the checked-out
// branch of a non-bare repository. For upstream branches returned by
// Upstream, Remote and Merge describe the tracking configuration the branch
// was resolved from.
type Branch struct {
	Name     string
	Ref      plumbing.ReferenceName
	Hash     plumbing.Hash
	IsRemote bool
	IsHead   bool
	Remote   string
	Merge    plumbing.ReferenceName
}

// Remote is a simple value type representing a configured remote.
type Remote struct {
	Name string
	URLs []string
}

// Auth is an interface for authentication methods.
// It is satisfied by go-git's transport.AuthMethod.
type Auth interface {
	// Marker interface - satisfied by go-git transport.AuthMethod
}

// CloneOptions configures repository cloning operations.
type CloneOptions struct {
	URL           string
	Path          string // Destination, relative to the filesystem root
	Auth          Auth
	Proxy         string                 // Proxy URL for HTTP(S) transports
	Bare          bool                   // Clone without a working tree
	Depth         int                    // 0 for full clone, >0 for shallow clone
	SingleBranch  bool                   // Clone only ReferenceName
	ReferenceName plumbing.ReferenceName // Branch to clone and check out
}

// FetchOptions configures fetch operations.
type FetchOptions struct {
	RemoteName string // Default: "origin"
	Auth       Auth
	Proxy      string
	Depth      int // For deepening shallow clones
}

// PushOptions configures push operations.
type PushOptions struct {
	RemoteName string // Default: "origin"
	RefSpecs   []string
	Auth       Auth
	Proxy      string
	Force      bool
}

// CommitOptions configures commit creation.
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	AllowEmpty bool
}

// RemoteOptions configures remote management.
type RemoteOptions struct {
	Name string
	URL  string
}

// RepositoryOption configures repository creation operations (Init, Open, Clone).
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	fs            billy.Filesystem
	remoteOps     RemoteOperations
	bare          bool
	auth          Auth
	proxy         string
	depth         int
	singleBranch  bool
	referenceName plumbing.ReferenceName
}

// WithFilesystem sets the billy filesystem to use for repository operations.
// Paths passed to Init, Open and Clone are interpreted relative to its root.
// If not provided, the OS filesystem is used and paths are made absolute.
//
// Example:
//
//	repo, err := git.Init("/repo", git.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.fs = fs
	}
}

// WithRemoteOperations sets the RemoteOperations implementation used for
// Clone, Fetch and Push. The implementation is retained by the returned
// Repository, so later Fetch and Push calls go through it as well.
//
// This option is primarily useful for testing without network access.
func WithRemoteOperations(ops RemoteOperations) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.remoteOps = ops
	}
}

// WithBare creates or clones a bare repository (no working tree).
func WithBare() RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.bare = true
	}
}

// WithAuth sets authentication for Clone operations.
func WithAuth(auth Auth) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.auth = auth
	}
}

// WithProxy sets the proxy URL used by Clone for HTTP(S) transports.
func WithProxy(proxy string) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.proxy = proxy
	}
}

// WithDepth sets the depth for shallow clones.
// A depth of 0 (default) performs a full clone.
func WithDepth(depth int) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.depth = depth
	}
}

// WithSingleBranch limits the clone to a single branch.
func WithSingleBranch() RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.singleBranch = true
	}
}

// WithReferenceName sets the branch to clone and check out.
//
// Example:
//
//	repo, err := git.Clone(ctx, url, dir,
//	    git.WithReferenceName(plumbing.NewBranchReferenceName("develop")))
func WithReferenceName(ref plumbing.ReferenceName) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.referenceName = ref
	}
}
