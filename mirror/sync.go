package mirror

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/gitmirror/git"
)

// SyncOption configures Synchronize.
type SyncOption func(*syncOptions)

type syncOptions struct {
	reporter Reporter
	auth     git.Auth
	proxy    string
}

// WithSyncReporter sets where Synchronize reports outcomes. Defaults to
// Discard.
func WithSyncReporter(r Reporter) SyncOption {
	return func(o *syncOptions) {
		o.reporter = r
	}
}

// WithSyncAuth sets the authentication used for fetch and push.
func WithSyncAuth(auth git.Auth) SyncOption {
	return func(o *syncOptions) {
		o.auth = auth
	}
}

// WithSyncProxy sets the proxy used for fetch and push.
func WithSyncProxy(proxy string) SyncOption {
	return func(o *syncOptions) {
		o.proxy = proxy
	}
}

// Synchronize reconciles branch of repo with its upstream.
//
// It fetches from origin, then compares the local tip with the tip of the
// configured upstream:
//
//   - equal tips: UpToDate
//   - dirty working tree: DirtyWorkingTree, history untouched
//   - local is an ancestor of remote: the branch is moved forward
//     (FastForwardedLocal); the working tree is reset only when the branch
//     is checked out in a non-bare mirror
//   - remote is an ancestor of local: the branch is pushed (PushedToRemote)
//   - otherwise one of the Diverged outcomes; nothing is merged
//
// Failures are reported and returned as OutcomeError. None of them leaves
// the mirror unusable: refs only move after the step that moves them has
// succeeded.
func Synchronize(ctx context.Context, repo *git.Repository, branch string, opts ...SyncOption) SyncResult {
	o := &syncOptions{reporter: Discard}
	for _, opt := range opts {
		opt(o)
	}

	s := &syncer{repo: repo, branch: branch, syncOptions: o}
	return s.run(ctx)
}

type syncer struct {
	*syncOptions
	repo   *git.Repository
	branch string
}

func (s *syncer) fail(severity Severity, result SyncResult, err error, format string, args ...any) SyncResult {
	s.reporter.Report(severity, format, args...)
	result.Outcome = OutcomeError
	result.Err = err
	return result
}

func (s *syncer) run(ctx context.Context) SyncResult {
	var result SyncResult

	err := s.repo.Fetch(ctx, git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       s.auth,
		Proxy:      s.proxy,
	})
	if err != nil {
		return s.fail(SeverityWarning, result, err, "Unable to fetch remote for branch %s: %v", s.branch, err)
	}

	local, err := s.repo.LookupBranch(s.branch)
	if err != nil {
		return s.fail(SeverityWarning, result, err, "Git cache branch %s no longer exists", s.branch)
	}
	result.Local = local.Hash

	remote, err := s.repo.Upstream(s.branch)
	if err != nil {
		return s.fail(SeverityWarning, result, err, "Git cache branch %s no longer has an upstream branch", s.branch)
	}
	result.Remote = remote.Hash

	if local.Hash == remote.Hash {
		result.Outcome = UpToDate
		return result
	}

	if err := CheckClean(s.repo); err != nil {
		if IsDirty(err) {
			s.reporter.Report(SeverityWarning, "Local cached copy is dirty (%v), skipping update", err)
			result.Outcome = DirtyWorkingTree
			result.Err = err
			return result
		}
		return s.fail(SeverityWarning, result, err, "Unable to read working tree status, skipping update: %v", err)
	}

	base, err := s.repo.MergeBase(local.Hash, remote.Hash)
	if err != nil {
		return s.fail(SeverityWarning, result, err, "Unable to find common commit of local and remote branches: %v", err)
	}

	switch {
	case base == local.Hash:
		return s.fastForward(result, local)
	case base == remote.Hash:
		return s.push(ctx, result, local, remote)
	}

	result.Outcome = s.divergence(local)
	return result
}

// fastForward moves the local branch to the remote tip. Only a checked-out
// branch of a non-bare mirror needs its working tree updated.
func (s *syncer) fastForward(result SyncResult, local *git.Branch) SyncResult {
	if s.repo.IsBare() || !local.IsHead {
		if err := s.repo.SetBranchTarget(s.branch, result.Local, result.Remote); err != nil {
			return s.fail(SeverityError, result, err, "Could not update local ref to newer remote ref: %v", err)
		}
		s.reporter.Report(SeverityInfo, "Updated local branch %s from remote", s.branch)
		result.Outcome = FastForwardedLocal
		return result
	}

	if err := s.repo.ResetHard(result.Remote); err != nil {
		return s.fail(SeverityError, result, err, "Local head checkout failed after update: %v", err)
	}
	s.reporter.Report(SeverityInfo, "Updated local information for %s from remote", s.branch)
	result.Outcome = FastForwardedLocal
	return result
}

func (s *syncer) push(ctx context.Context, result SyncResult, local, remote *git.Branch) SyncResult {
	refSpec := fmt.Sprintf("%s:%s", local.Ref, remote.Merge)

	err := s.repo.Push(ctx, git.PushOptions{
		RemoteName: remote.Remote,
		RefSpecs:   []string{refSpec},
		Auth:       s.auth,
		Proxy:      s.proxy,
	})
	if err != nil {
		return s.fail(SeverityWarning, result, err, "Unable to update remote with current local cache state (%v)", err)
	}

	s.reporter.Report(SeverityInfo, "Local cache of %s more recent than remote, pushed", s.branch)
	result.Outcome = PushedToRemote
	return result
}

func (s *syncer) divergence(local *git.Branch) Outcome {
	switch {
	case s.repo.IsBare():
		s.reporter.Report(SeverityWarning, "Local and remote have diverged, merge of bare branch %s needed", s.branch)
		return DivergedBareNeedsManualMerge
	case !local.IsHead:
		s.reporter.Report(SeverityWarning, "Local and remote do not match, local branch %s not HEAD - cannot update", s.branch)
		return DivergedNotHead
	default:
		s.reporter.Report(SeverityWarning, "Local and remote have diverged on %s, need to merge", s.branch)
		return DivergedNeedsMerge
	}
}
