// Package git provides the version control backend for mirrors: a thin,
// type-safe wrapper around go-git.
//
// The package deliberately stays small. It offers exactly the operations a
// branch mirror needs and leaves everything else to the escape hatch:
//
//   - Init, Open and Clone create Repository handles on a billy filesystem
//   - Fetch and Push move history over the network through RemoteOperations
//   - LookupBranch, Upstream and SetBranchTarget inspect and move references
//   - MergeBase relates two commits
//   - WalkStatus enumerates working tree changes; ResetHard updates a clean
//     working tree to another commit
//   - SetConfigOption writes repository configuration such as http.proxy
//
// # Filesystems
//
// All repositories live on a go-billy filesystem. By default the OS
// filesystem is used and paths are made absolute; tests pass memfs via
// WithFilesystem:
//
//	repo, err := git.Init("/repo", git.WithFilesystem(memfs.New()))
//
// A directory containing .git is opened as a standard repository; anything
// else is treated as bare.
//
// # Network Operations
//
// Clone, Fetch and Push go through the RemoteOperations interface. The
// implementation given to WithRemoteOperations is kept by the Repository, so
// tests can replace the network entirely:
//
//	repo, err := git.Open(dir, git.WithRemoteOperations(mockOps))
//	err = repo.Fetch(ctx, git.FetchOptions{})
//
// Network operations accept a context.Context; local operations do not.
//
// # Authentication
//
//	auth, err := git.SSHKeyFile("git", "/cache/remote.key", passphrase)
//	auth := git.BasicAuth("alice", token)
//
// # Error Handling
//
// go-git errors are classified into github.com/jmgilman/go/errors codes
// while keeping the original error in the chain:
//
//   - CodeNotFound: repository, reference, remote, upstream or merge base missing
//   - CodeAlreadyExists: repository, branch or remote already exists
//   - CodeUnauthorized: authentication failure
//   - CodeConflict: dirty worktree, non-fast-forward or concurrent reference update
//   - CodeInvalidInput: missing URL, author or bad reference
//
// Use errors.Is with ErrNoUpstream or ErrNoMergeBase, or with go-git's own
// sentinels, to test for a specific condition.
package git
