// Package guard decides whether the repository is in a releasable state.
package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/SFSorrow1968/iif-release/errors"
	"github.com/SFSorrow1968/iif-release/vcs"
)

// maxReportedPaths caps how many dirty paths are named in the error message.
const maxReportedPaths = 5

// protectedBranches may never be released from directly. Exact, case-sensitive match.
var protectedBranches = map[string]struct{}{
	"main":   {},
	"master": {},
}

// IsProtected reports whether branch is a trunk branch releases may not start from.
func IsProtected(branch string) bool {
	_, ok := protectedBranches[branch]
	return ok
}

// RequireCleanNonMainGitState passes only when the current branch is not a
// protected branch and the working tree has no changes of any kind.
// The branch is checked first so a protected-branch abort never depends on
// tree state. Nothing is remediated.
func RequireCleanNonMainGitState(ctx context.Context, client vcs.Client) error {
	branch, err := client.CurrentBranch(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeNotARepository,
			"not a git repository; initialize git before running release automation")
	}

	if IsProtected(branch) {
		return errors.NewWithContext(
			errors.CodeProtectedBranch,
			fmt.Sprintf("refusing release on protected branch %q; use a feature/release branch", branch),
			map[string]any{"branch": branch},
		)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	if len(status) > 0 {
		return errors.NewWithContext(
			errors.CodeDirtyWorkingTree,
			"working tree is dirty; commit or stash changes before releasing: "+describe(status),
			map[string]any{"changes": len(status)},
		)
	}
	return nil
}

// describe names the first few dirty paths.
func describe(status []string) string {
	n := min(len(status), maxReportedPaths)
	paths := make([]string, 0, n)
	for _, line := range status[:n] {
		paths = append(paths, pathOf(line))
	}
	out := strings.Join(paths, ", ")
	if extra := len(status) - n; extra > 0 {
		out += fmt.Sprintf(" and %d more", extra)
	}
	return out
}

// pathOf strips the two-letter porcelain status code from a status line.
func pathOf(line string) string {
	if len(line) > 3 && line[2] == ' ' {
		return line[3:]
	}
	return strings.TrimSpace(line)
}
