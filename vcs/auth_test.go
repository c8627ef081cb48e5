package vcs_test

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFSorrow1968/iif-release/vcs"
)

func TestTokenAuthMethod(t *testing.T) {
	tests := []struct {
		name     string
		provider *vcs.TokenAuth
		url      string
		wantAuth bool
	}{
		{name: "https remote", provider: vcs.NewTokenAuth("secret"), url: "https://github.com/owner/repo.git", wantAuth: true},
		{name: "ssh remote gets no auth", provider: vcs.NewTokenAuth("secret"), url: "ssh://git@github.com/owner/repo.git", wantAuth: false},
		{name: "allowed host", provider: vcs.NewTokenAuth("secret", "github.com"), url: "https://github.com/o/r.git", wantAuth: true},
		{name: "wildcard host", provider: vcs.NewTokenAuth("secret", "*.example.com"), url: "https://git.example.com/o/r.git", wantAuth: true},
		{name: "host not allowed", provider: vcs.NewTokenAuth("secret", "github.com"), url: "https://gitlab.com/o/r.git", wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := tt.provider.Method(tt.url)
			require.NoError(t, err)
			if !tt.wantAuth {
				assert.Nil(t, method)
				return
			}
			basic, ok := method.(*http.BasicAuth)
			require.True(t, ok)
			assert.Equal(t, "secret", basic.Password)
		})
	}
}

func TestTokenAuthInvalidURL(t *testing.T) {
	_, err := vcs.NewTokenAuth("secret").Method("://bad")
	assert.Error(t, err)
}

func TestTokenFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		url        string
		wantSecret string
	}{
		{name: "github token on github", env: map[string]string{"GITHUB_TOKEN": "gh-secret"}, url: "https://github.com/o/r.git", wantSecret: "gh-secret"},
		{name: "github token withheld from gitlab", env: map[string]string{"GITHUB_TOKEN": "gh-secret"}, url: "https://gitlab.com/o/r.git"},
		{name: "gh token withheld from gitlab", env: map[string]string{"GH_TOKEN": "gh-secret"}, url: "https://gitlab.com/o/r.git"},
		{name: "generic token on gitlab", env: map[string]string{"GIT_TOKEN": "any-secret"}, url: "https://gitlab.com/o/r.git", wantSecret: "any-secret"},
		{name: "generic token wins", env: map[string]string{"GIT_TOKEN": "any-secret", "GITHUB_TOKEN": "gh-secret"}, url: "https://github.com/o/r.git", wantSecret: "any-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range vcs.TokenEnvVars {
				t.Setenv(name, tt.env[name])
			}

			p := vcs.TokenFromEnv()
			require.NotNil(t, p)

			method, err := p.Method(tt.url)
			require.NoError(t, err)
			if tt.wantSecret == "" {
				assert.Nil(t, method)
				return
			}
			basic, ok := method.(*http.BasicAuth)
			require.True(t, ok)
			assert.Equal(t, tt.wantSecret, basic.Password)
		})
	}
}

func TestTokenFromEnvUnset(t *testing.T) {
	for _, name := range vcs.TokenEnvVars {
		t.Setenv(name, "")
	}
	assert.Nil(t, vcs.TokenFromEnv())
}
