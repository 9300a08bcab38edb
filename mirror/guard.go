package mirror

import (
	"errors"
	"fmt"

	"github.com/jmgilman/go/gitmirror/git"
)

// DirtyError reports the first working tree entry that keeps a mirror from
// being updated.
type DirtyError struct {
	Path   string
	Status git.StatusFlag
}

func (e *DirtyError) Error() string {
	return fmt.Sprintf("working tree modified at %s (%s)", e.Path, e.Status)
}

// CheckClean returns nil when the working tree of repo has no entry other
// than current or ignored ones, and a *DirtyError for the first entry that
// has any other status. The walk stops at that entry.
//
// Bare mirrors have no working tree and are always clean. Any other error
// comes from reading the status and means cleanliness is unknown.
func CheckClean(repo *git.Repository) error {
	err := repo.WalkStatus(func(path string, status git.StatusFlag) error {
		if status == git.StatusCurrent || status == git.StatusIgnored {
			return nil
		}
		return &DirtyError{Path: path, Status: status}
	})
	//nolint:wrapcheck // the visitor's error and wrapped git errors are returned as is
	return err
}

// IsDirty reports whether err is or wraps a *DirtyError.
func IsDirty(err error) bool {
	var dirty *DirtyError
	return errors.As(err, &dirty)
}
