// Package mirror keeps local, branch-scoped mirrors of remote git
// repositories and reconciles them with their upstream on every access.
//
// Each (remote, branch) pair gets its own standalone repository under a
// base directory, named by Digest:
//
//	<baseDir>/<sha1(remote \x00 branch) in hex>
//
// # Resolving names
//
// Mirror.Resolve accepts names of the form <location>[<branch>] and
// returns a tagged Resolution:
//
//	m, err := mirror.New(baseDir, mirror.WithReporter(mirror.NewLogReporter(log)))
//	res := m.Resolve(ctx, "https://alice@example.com/data.git[main]")
//
// # Synchronization
//
// On every access after the first, Synchronize fetches origin and compares
// the branch with its upstream. It fast-forwards whichever side is behind
// and refuses to touch history when the working tree is dirty or the two
// sides have diverged. Divergence is always left to the user.
//
// # Bookkeeping
//
// Digest names are one-way, so every access is recorded in index.json
// under the base directory. Mirror.List reads it back and Mirror.Prune
// removes mirrors matched by a PruneStrategy.
//
// # Reporting
//
// Every notable event goes to a Reporter and reporting never influences
// control flow. Successful updates are reported at SeverityInfo. Failures
// that prevent handing out a mirror use SeverityError; everything else that
// needs attention uses SeverityWarning.
package mirror
