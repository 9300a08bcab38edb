package locator

import (
	"net/url"
	"strings"
)

// Scheme classifies the transport of a remote locator.
type Scheme int

const (
	// SchemeOther covers git://, http://, file:// and unrecognized schemes.
	// No credentials are attached for these.
	SchemeOther Scheme = iota

	// SchemeHTTPS uses basic authentication.
	SchemeHTTPS

	// SchemeSSH uses public key authentication.
	SchemeSSH
)

func (s Scheme) String() string {
	switch s {
	case SchemeHTTPS:
		return "https"
	case SchemeSSH:
		return "ssh"
	default:
		return "other"
	}
}

const (
	httpsPrefix = "https://"
	sshPrefix   = "ssh://"
	filePrefix  = "file://"
)

var knownSchemes = map[string]bool{
	"ssh":   true,
	"https": true,
	"http":  true,
	"git":   true,
	"file":  true,
}

// KnownScheme reports whether name is one of the schemes mirrors are
// documented to work with: ssh, https, http, git and file.
func KnownScheme(name string) bool {
	return knownSchemes[name]
}

// Credential is a username embedded in an HTTPS locator.
type Credential struct {
	// Username is the percent-decoded user name. When the embedded text is
	// not valid percent-encoding it equals Encoded.
	Username string

	// Encoded is the user name exactly as it appeared in the locator.
	Encoded string
}

// Remote is a normalized remote locator.
//
// For HTTPS locators URL never contains user info: any embedded username
// is moved into Credential before anything else sees the URL, so the same
// upstream always normalizes to the same string.
type Remote struct {
	Scheme     Scheme
	URL        string
	Credential *Credential
}

// ParseRemote recognizes remote locators of the form scheme://rest, where
// scheme is one or more lowercase ASCII letters.
//
// The second return value is false when s is not a remote locator at all;
// callers then treat s as a local path. This is not an error.
//
// A file:// prefix is stripped and the remainder is used as a plain local
// path with SchemeOther. An HTTPS locator has any username embedded before
// the host extracted into Credential.
//
// Examples:
//
//	r, ok := locator.ParseRemote("https://alice@example.com/repo.git")
//	// r.URL == "https://example.com/repo.git", r.Credential.Username == "alice"
//
//	_, ok = locator.ParseRemote("/srv/data")
//	// ok == false
func ParseRemote(s string) (Remote, bool) {
	if !hasSchemePrefix(s) {
		return Remote{}, false
	}

	if rest, ok := strings.CutPrefix(s, filePrefix); ok {
		return Remote{Scheme: SchemeOther, URL: rest}, true
	}

	switch {
	case strings.HasPrefix(s, sshPrefix):
		return Remote{Scheme: SchemeSSH, URL: s}, true
	case strings.HasPrefix(s, httpsPrefix):
		normalized, cred := extractCredential(s)
		return Remote{Scheme: SchemeHTTPS, URL: normalized, Credential: cred}, true
	default:
		return Remote{Scheme: SchemeOther, URL: s}, true
	}
}

// hasSchemePrefix reports whether s starts with [a-z]+://.
func hasSchemePrefix(s string) bool {
	i := 0
	for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
		i++
	}
	return i > 0 && strings.HasPrefix(s[i:], "://")
}

// extractCredential splits an HTTPS locator into the locator without user
// info and the credential. The '@' only delimits a username when the first
// '/' after the scheme comes after it; otherwise it belongs to the path.
func extractCredential(s string) (string, *Credential) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return s, nil
	}

	slash := strings.IndexByte(s[len(httpsPrefix):], '/')
	if slash < 0 || len(httpsPrefix)+slash < at {
		return s, nil
	}

	encoded := s[len(httpsPrefix):at]
	username, err := url.PathUnescape(encoded)
	if err != nil {
		username = encoded
	}

	return httpsPrefix + s[at+1:], &Credential{Username: username, Encoded: encoded}
}

// SchemeName returns the lowercase scheme of the locator as written, e.g.
// "git" for git://host/repo. It returns "" for file:// locators, which are
// stored as plain paths.
func (r Remote) SchemeName() string {
	i := strings.Index(r.URL, "://")
	if i <= 0 {
		return ""
	}
	return r.URL[:i]
}

// Redacted returns the URL with any user info and password removed, for
// use in log messages.
func (r Remote) Redacted() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.User == nil {
		return r.URL
	}
	u.User = nil
	return u.String()
}

func (r Remote) String() string {
	return r.Redacted()
}
