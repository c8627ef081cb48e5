package vcs

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// AuthProvider resolves authentication methods for pushes.
type AuthProvider interface {
	// Method returns the transport.AuthMethod for the given remote URL.
	// Returns nil if no authentication is needed/available for this URL.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// TokenEnvVars are consulted in order by TokenFromEnv.
var TokenEnvVars = []string{"GIT_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"}

// tokenHosts restricts host-specific token variables. Variables not listed
// (GIT_TOKEN) are sent to every HTTPS remote.
var tokenHosts = map[string][]string{
	"GITHUB_TOKEN": {"github.com"},
	"GH_TOKEN":     {"github.com"},
}

// TokenAuth authenticates HTTPS remotes with a personal access token.
// Non-HTTPS remotes get no auth so go-git falls back to its defaults (ssh agent).
type TokenAuth struct {
	auth *http.BasicAuth

	// AllowedHosts restricts the token to these hosts. Supports a leading "*." wildcard.
	// If empty, the token is sent to every HTTPS remote.
	AllowedHosts []string
}

// NewTokenAuth creates a token provider. Most hosts (GitHub, GitLab) accept
// any non-empty username with the token as password.
func NewTokenAuth(token string, allowedHosts ...string) *TokenAuth {
	return &TokenAuth{
		auth: &http.BasicAuth{
			Username: "token",
			Password: token,
		},
		AllowedHosts: allowedHosts,
	}
}

// TokenFromEnv returns a TokenAuth from the first non-empty variable in
// TokenEnvVars, or nil when none is set. GitHub tokens are only offered
// to github.com.
func TokenFromEnv() *TokenAuth {
	for _, name := range TokenEnvVars {
		if v := os.Getenv(name); v != "" {
			return NewTokenAuth(v, tokenHosts[name]...)
		}
	}
	return nil
}

// Method implements AuthProvider.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *TokenAuth) Method(remoteURL string) (transport.AuthMethod, error) {
	parsed, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, nil
	}
	if len(p.AllowedHosts) > 0 && !p.hostAllowed(parsed.Hostname()) {
		return nil, nil
	}
	return p.auth, nil
}

func (p *TokenAuth) hostAllowed(host string) bool {
	for _, pattern := range p.AllowedHosts {
		if host == pattern {
			return true
		}
		if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true
			}
		}
	}
	return false
}
