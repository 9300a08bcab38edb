package mirror

import (
	"github.com/go-git/go-git/v5/plumbing"
)

// Outcome classifies the result of one synchronization attempt.
type Outcome int

const (
	// OutcomeNone means the decision engine did not run.
	OutcomeNone Outcome = iota

	// OutcomeCloned means the mirror was freshly cloned and is already at
	// the remote tip.
	OutcomeCloned

	// UpToDate means local and remote tips are the same commit.
	UpToDate

	// FastForwardedLocal means the local branch moved forward to the
	// remote tip.
	FastForwardedLocal

	// PushedToRemote means the local branch was ahead and has been pushed.
	PushedToRemote

	// DivergedBareNeedsManualMerge means the histories diverged in a bare
	// mirror, which has no working tree to merge in.
	DivergedBareNeedsManualMerge

	// DivergedNotHead means the histories diverged and the branch is not
	// the one checked out.
	DivergedNotHead

	// DivergedNeedsMerge means the histories diverged on the checked-out
	// branch. Merging is left to the user.
	DivergedNeedsMerge

	// DirtyWorkingTree means the working tree has changes, so history was
	// left alone.
	DirtyWorkingTree

	// OutcomeError means a step failed; SyncResult.Err holds the reason.
	OutcomeError
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:                  "none",
	OutcomeCloned:                "cloned",
	UpToDate:                     "up-to-date",
	FastForwardedLocal:           "fast-forwarded-local",
	PushedToRemote:               "pushed-to-remote",
	DivergedBareNeedsManualMerge: "diverged-bare-needs-manual-merge",
	DivergedNotHead:              "diverged-not-head",
	DivergedNeedsMerge:           "diverged-needs-merge",
	DirtyWorkingTree:             "dirty-working-tree",
	OutcomeError:                 "error",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Diverged reports whether o is one of the divergence outcomes.
func (o Outcome) Diverged() bool {
	return o == DivergedBareNeedsManualMerge || o == DivergedNotHead || o == DivergedNeedsMerge
}

// SyncResult is produced once per synchronization attempt. Local and Remote
// hold the tips as they were seen before any action; they are zero when the
// engine stopped before resolving them. Err holds the reason for
// OutcomeError and the *DirtyError for DirtyWorkingTree.
type SyncResult struct {
	Outcome Outcome
	Local   plumbing.Hash
	Remote  plumbing.Hash
	Err     error
}
