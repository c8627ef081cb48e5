// Package vcs is the version-control collaborator of the release pipeline.
//
// The pipeline needs five operations: read the current branch, read the
// working-tree status, check whether a tag exists, create a tag and push a tag.
// Client describes them; CLI implements them by invoking git, GoGit implements
// them in-process with go-git.
package vcs

import (
	"context"
	"strings"
)

// Backend names accepted by configuration.
const (
	BackendCLI   = "git-cli"
	BackendGoGit = "go-git"
)

// DefaultRemoteName is the remote tags are pushed to.
const DefaultRemoteName = "origin"

// Client is the version-control surface used by the release pipeline.
type Client interface {
	// CurrentBranch returns the checked-out branch name, or "" for a detached HEAD.
	CurrentBranch(ctx context.Context) (string, error)

	// Status returns porcelain-style status lines, one per changed or untracked path.
	// An empty result means the working tree is clean.
	Status(ctx context.Context) ([]string, error)

	// TagExists reports whether a local tag with exactly this name exists.
	TagExists(ctx context.Context, tag string) (bool, error)

	// CreateTag creates a lightweight tag at HEAD.
	CreateTag(ctx context.Context, tag string) error

	// PushTag pushes a single tag to remote.
	PushTag(ctx context.Context, remote, tag string) error
}

// splitLines returns the non-blank lines of out with trailing whitespace removed.
// Leading whitespace is kept: porcelain status codes may start with a space.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
