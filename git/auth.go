package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// SSHKeyAuth creates SSH public key authentication from PEM-encoded key
// bytes. passphrase may be empty for unencrypted keys.
//
// Example:
//
//	auth, err := git.SSHKeyAuth("git", pemBytes, "")
func SSHKeyAuth(user string, pemBytes []byte, passphrase string) (Auth, error) {
	publicKeys, err := ssh.NewPublicKeys(user, pemBytes, passphrase)
	if err != nil {
		return nil, wrapError(err, "failed to parse SSH key")
	}

	return publicKeys, nil
}

// SSHKeyFile creates SSH public key authentication from a key file.
//
// Example:
//
//	auth, err := git.SSHKeyFile("git", "/var/cache/mirror/remote.key", passphrase)
func SSHKeyFile(user, keyPath, passphrase string) (Auth, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to read SSH key file %q", keyPath))
	}

	return SSHKeyAuth(user, pemBytes, passphrase)
}

// BasicAuth creates HTTP basic authentication, typically a username plus a
// password or personal access token.
func BasicAuth(username, password string) Auth {
	return &http.BasicAuth{
		Username: username,
		Password: password,
	}
}

// Compile-time check that go-git auth methods satisfy Auth.
var _ Auth = (transport.AuthMethod)(nil)
