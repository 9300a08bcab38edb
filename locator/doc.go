// Package locator parses the names that address a mirror.
//
// A name has the form <location>[<branch>], parsed by ParseReference. The
// location is either a remote locator (scheme://...) recognized by
// ParseRemote, or a path to an existing local repository.
//
//	ref, ok := locator.ParseReference("https://alice@example.com/data.git[main]")
//	remote, isRemote := locator.ParseRemote(ref.Location)
//
// Neither function returns errors. A false second result means the input is
// not of the expected shape and the caller should treat it some other way.
package locator
