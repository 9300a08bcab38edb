package git

import (
	"errors"
	"io/fs"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage"
	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrNoUpstream is returned when a branch has no tracking configuration.
	ErrNoUpstream = errors.New("branch has no upstream")

	// ErrNoMergeBase is returned when two commits share no history.
	ErrNoMergeBase = errors.New("no common ancestor")
)

// wrapError wraps an error with context, classifying it as a platform error.
// The original error stays in the chain for errors.Is/errors.As.
// If err is nil, returns nil.
func wrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	return platformerrors.Wrap(err, classifyError(err), context)
}

// classifyError maps go-git errors to platform error codes.
// Unknown errors are classified as CodeUnknown.
//
//nolint:gocyclo,cyclop // each case is a simple mapping
func classifyError(err error) platformerrors.ErrorCode {
	// Already classified further down the chain
	if code := platformerrors.GetCode(err); code != platformerrors.CodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists),
		errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, gogit.ErrRemoteNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, ErrNoUpstream),
		errors.Is(err, ErrNoMergeBase):
		return platformerrors.CodeNotFound

	case errors.Is(err, gogit.ErrRepositoryAlreadyExists),
		errors.Is(err, gogit.ErrRemoteExists),
		errors.Is(err, gogit.ErrBranchExists),
		errors.Is(err, gogit.ErrDestinationExists):
		return platformerrors.CodeAlreadyExists

	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return platformerrors.CodeUnauthorized

	case errors.Is(err, gogit.ErrWorktreeNotClean),
		errors.Is(err, gogit.ErrNonFastForwardUpdate),
		errors.Is(err, storage.ErrReferenceHasChanged),
		errors.Is(err, gogit.ErrEmptyCommit),
		errors.Is(err, gogit.ErrIsBareRepository):
		return platformerrors.CodeConflict

	case errors.Is(err, gogit.ErrMissingURL),
		errors.Is(err, gogit.ErrMissingAuthor),
		errors.Is(err, gogit.ErrMissingName),
		errors.Is(err, gogit.ErrInvalidReference):
		return platformerrors.CodeInvalidInput
	}

	return platformerrors.CodeUnknown
}
