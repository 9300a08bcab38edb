package locator

// Reference is a name split by the <path>[<branch>] grammar.
type Reference struct {
	// Location is a remote locator or a local directory, without the
	// slashes that preceded the '['.
	Location string

	// Branch is the text between the brackets. It may be empty.
	Branch string
}

// ParseReference splits name into location and branch following the
// <path>[<branch>] grammar.
//
// name must end in ']'. The branch starts after the last '[' that is not
// escaped with a backslash. Slashes directly in front of the '[' are
// dropped from the location. The second return value is false when the
// grammar does not match or the location would be empty; callers then fall
// back to plain path handling.
//
// Examples:
//
//	ParseReference("foo/bar[baz]")     // {Location: "foo/bar", Branch: "baz"}, true
//	ParseReference("foo/bar///[baz]")  // {Location: "foo/bar", Branch: "baz"}, true
//	ParseReference("nogrammarhere")    // {}, false
func ParseReference(name string) (Reference, bool) {
	end := len(name) - 1
	if end < 0 || name[end] != ']' {
		return Reference{}, false
	}

	open := -1
	for i := end - 1; i >= 0; i-- {
		if name[i] == '[' && (i == 0 || name[i-1] != '\\') {
			open = i
			break
		}
	}
	if open < 0 {
		return Reference{}, false
	}

	loc := open
	for loc > 0 && name[loc-1] == '/' {
		loc--
	}
	if loc == 0 {
		return Reference{}, false
	}

	return Reference{
		Location: name[:loc],
		Branch:   name[open+1 : end],
	}, true
}

// String renders the reference back into the grammar.
func (r Reference) String() string {
	return r.Location + "[" + r.Branch + "]"
}
