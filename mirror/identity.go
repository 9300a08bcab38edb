package mirror

import (
	"crypto/sha1" //nolint:gosec // identity digest, not a security boundary
	"encoding/hex"
	"path/filepath"
)

// Digest returns the 40 character lowercase hex SHA-1 of remote, a zero
// byte and branch. The separator keeps ("repo1", "branch") and
// ("repo", "1branch") apart.
//
// remote must already be normalized (see locator.ParseRemote) so that the
// way credentials were supplied never changes the result.
func Digest(remote, branch string) string {
	h := sha1.New() //nolint:gosec // identity digest, not a security boundary
	h.Write([]byte(remote))
	h.Write([]byte{0})
	h.Write([]byte(branch))
	return hex.EncodeToString(h.Sum(nil))
}

// LocalPath returns the directory holding the mirror of branch of remote
// under baseDir. The mapping is pure: identical inputs always produce the
// identical path.
//
// Example:
//
//	dir := mirror.LocalPath("/var/cache/gitmirror", "https://example.com/data.git", "main")
//	// /var/cache/gitmirror/<40 hex characters>
func LocalPath(baseDir, remote, branch string) string {
	return filepath.Join(baseDir, Digest(remote, branch))
}
