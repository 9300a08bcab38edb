package mirror

import (
	"net/url"
	"path/filepath"

	"github.com/jmgilman/go/gitmirror/git"
	"github.com/jmgilman/go/gitmirror/locator"
)

// DefaultSSHKeyName is the private key file looked up under the base
// directory when ConnectionContext.SSHKeyPath is empty.
const DefaultSSHKeyName = "remote.key"

// DefaultSSHUser is used when neither the locator nor the connection
// context names an SSH user.
const DefaultSSHUser = "git"

// ConnectionContext carries the credentials and proxy for network
// operations. It is passed explicitly instead of being read from global
// preferences; the zero value means anonymous access without a proxy.
type ConnectionContext struct {
	// Username for HTTPS when the locator has no embedded username.
	Username string

	// Passphrase is the HTTPS password or token, and the SSH key
	// passphrase.
	Passphrase string

	// SSHKeyPath is the private key for SSH remotes. Defaults to
	// <baseDir>/remote.key.
	SSHKeyPath string

	// SSHUser for SSH when the locator has no user info.
	SSHUser string

	// Proxy is the HTTP(S) proxy URL. It is only used for HTTPS remotes.
	Proxy string
}

// Auth builds the authentication for remote. It returns nil for schemes
// that take no credentials and for HTTPS when neither a username nor a
// passphrase is known.
func (c ConnectionContext) Auth(remote locator.Remote, baseDir string) (git.Auth, error) {
	switch remote.Scheme {
	case locator.SchemeHTTPS:
		username := c.Username
		if remote.Credential != nil && remote.Credential.Username != "" {
			username = remote.Credential.Username
		}
		if username == "" && c.Passphrase == "" {
			return nil, nil
		}
		return git.BasicAuth(username, c.Passphrase), nil

	case locator.SchemeSSH:
		keyPath := c.SSHKeyPath
		if keyPath == "" {
			keyPath = filepath.Join(baseDir, DefaultSSHKeyName)
		}
		//nolint:wrapcheck // errors from git package are already wrapped
		return git.SSHKeyFile(c.sshUser(remote), keyPath, c.Passphrase)

	default:
		return nil, nil
	}
}

func (c ConnectionContext) sshUser(remote locator.Remote) string {
	if u, err := url.Parse(remote.URL); err == nil && u.User != nil && u.User.Username() != "" {
		return u.User.Username()
	}
	if c.SSHUser != "" {
		return c.SSHUser
	}
	return DefaultSSHUser
}

// ProxyFor returns the proxy to use for remote: the configured proxy for
// HTTPS remotes, "" otherwise.
func (c ConnectionContext) ProxyFor(remote locator.Remote) string {
	if remote.Scheme != locator.SchemeHTTPS {
		return ""
	}
	return c.Proxy
}
