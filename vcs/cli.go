package vcs

import (
	"context"
	"strings"

	"github.com/SFSorrow1968/iif-release/step"
)

// CLI implements Client by running the git command line tool through a step.Runner.
// Queries are captured silently; tag creation and push are printed as audit lines.
type CLI struct {
	runner  *step.Runner
	program string
}

// NewCLI returns a CLI backend that runs "git" in the runner's root.
func NewCLI(runner *step.Runner) *CLI {
	return &CLI{runner: runner, program: "git"}
}

func (c *CLI) git(args ...string) step.Step {
	return step.New(c.program, args...)
}

// CurrentBranch implements Client.
func (c *CLI) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, c.git("branch", "--show-current"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Status implements Client.
func (c *CLI) Status(ctx context.Context) ([]string, error) {
	out, err := c.runner.Output(ctx, c.git("status", "--porcelain"))
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// TagExists implements Client. The listing is matched line by line so that
// "v1.0" does not match an existing "v1.0.1".
func (c *CLI) TagExists(ctx context.Context, tag string) (bool, error) {
	if tag == "" {
		return false, WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	out, err := c.runner.Output(ctx, c.git("tag", "-l", tag))
	if err != nil {
		return false, err
	}
	for _, line := range splitLines(out) {
		if strings.TrimSpace(line) == tag {
			return true, nil
		}
	}
	return false, nil
}

// CreateTag implements Client.
func (c *CLI) CreateTag(ctx context.Context, tag string) error {
	if tag == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	return c.runner.Run(ctx, c.git("tag", tag))
}

// PushTag implements Client.
func (c *CLI) PushTag(ctx context.Context, remote, tag string) error {
	if tag == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if remote == "" {
		remote = DefaultRemoteName
	}
	return c.runner.Run(ctx, c.git("push", remote, tag))
}
