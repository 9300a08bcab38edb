package mirror

import (
	"context"
	"os"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/gitmirror/git"
	"github.com/jmgilman/go/gitmirror/locator"
)

// Kind tags a Resolution.
type Kind int

const (
	// NotApplicable means the name is not of the <location>[<branch>]
	// form. Callers should handle it as a plain path.
	NotApplicable Kind = iota

	// Placeholder means the name is a repository reference that could not
	// be resolved. Err says why.
	Placeholder

	// Ready means Repository is a usable mirror or local repository.
	Ready
)

func (k Kind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case Ready:
		return "ready"
	default:
		return "not-applicable"
	}
}

// Resolution is the result of Resolve.
type Resolution struct {
	Kind Kind

	// Repository is set when Kind is Ready.
	Repository *git.Repository

	// Path is the directory of the repository: the mirror directory for
	// remote locators, the location itself for local repositories.
	Path string

	// Branch is the branch named in the reference.
	Branch string

	// Remote is set when the location is a remote locator.
	Remote *locator.Remote

	// Sync describes the synchronization performed for remote mirrors.
	Sync SyncResult

	// Err is set when Kind is Placeholder.
	Err error
}

// Resolve turns a name of the form <location>[<branch>] into a repository.
//
// Names that don't match the grammar resolve to NotApplicable. Once the
// grammar matches the result is either Ready or Placeholder, never
// NotApplicable:
//
//   - a remote locator is mirrored with Acquire
//   - any other location must be an existing directory holding a
//     repository, which is opened as is without synchronization
//
// Example:
//
//	res := m.Resolve(ctx, "https://example.com/data.git[main]")
//	switch res.Kind {
//	case mirror.Ready:
//	    // use res.Repository
//	case mirror.Placeholder:
//	    // report res.Err
//	case mirror.NotApplicable:
//	    // treat as a plain file name
//	}
func (m *Mirror) Resolve(ctx context.Context, name string) Resolution {
	ref, ok := locator.ParseReference(name)
	if !ok {
		return Resolution{Kind: NotApplicable}
	}

	res := Resolution{Kind: Placeholder, Branch: ref.Branch}
	if ref.Branch == "" {
		res.Err = platformerrors.Newf(platformerrors.CodeInvalidInput, "no branch given in %q", name)
		m.reporter.Report(SeverityWarning, "No branch given for repository %s", ref.Location)
		return res
	}

	if remote, isRemote := locator.ParseRemote(ref.Location); isRemote {
		res.Remote = &remote
		res.Path = m.Path(remote.URL, ref.Branch)

		repo, sync, err := m.Acquire(ctx, remote, ref.Branch)
		res.Sync = sync
		if err != nil {
			res.Err = err
			return res
		}

		res.Kind = Ready
		res.Repository = repo
		return res
	}

	res.Path = ref.Location

	info, err := os.Stat(ref.Location)
	if err != nil || !info.IsDir() {
		res.Err = platformerrors.Newf(platformerrors.CodeNotFound, "%s is not a repository directory", ref.Location)
		return res
	}

	repo, err := git.Open(ref.Location, m.repoOptions()...)
	if err != nil {
		res.Err = err
		return res
	}

	res.Kind = Ready
	res.Repository = repo
	return res
}
