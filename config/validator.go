package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SFSorrow1968/iif-release/errors"
)

var validBackends = []string{"git-cli", "go-git"}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New(errors.CodeInvalidInput, "configuration is nil")
	}

	var problems []string

	problems = append(problems, c.validateRoot()...)

	if strings.TrimSpace(c.Manifest) == "" {
		problems = append(problems, "manifest path is empty")
	}
	if c.TagPrefix == "" {
		problems = append(problems, "tag prefix is empty")
	}
	if c.Remote == "" {
		problems = append(problems, "remote is empty")
	}
	if !contains(validBackends, c.VCS) {
		problems = append(problems, fmt.Sprintf("unknown vcs backend %q (valid: %s)", c.VCS, strings.Join(validBackends, ", ")))
	}
	if c.Verify.Program == "" {
		problems = append(problems, "verify program is empty")
	}
	if c.Archiver.Program == "" {
		problems = append(problems, "archiver program is empty")
	}
	if c.Publish.Program == "" {
		problems = append(problems, "publish program is empty")
	}

	problems = append(problems, validateArchives(c.Archives)...)

	if len(problems) > 0 {
		return errors.New(
			errors.CodeInvalidConfig,
			fmt.Sprintf("configuration validation failed: %s", strings.Join(problems, "; ")),
		)
	}
	return nil
}

func (c *Config) validateRoot() []string {
	if c.Root == "" {
		return []string{"repository root is empty"}
	}
	if !filepath.IsAbs(c.Root) {
		return []string{fmt.Sprintf("repository root %q is not absolute", c.Root)}
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return []string{fmt.Sprintf("repository root %q: %v", c.Root, err)}
	}
	if !info.IsDir() {
		return []string{fmt.Sprintf("repository root %q is not a directory", c.Root)}
	}
	return nil
}

func validateArchives(archives []Archive) []string {
	if len(archives) == 0 {
		return []string{"at least one archive is required"}
	}

	var problems []string
	seen := make(map[string]string, len(archives))
	for i, a := range archives {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if a.Source == "" {
			problems = append(problems, fmt.Sprintf("archive %s has no source", label))
		}
		if a.Destination == "" {
			problems = append(problems, fmt.Sprintf("archive %s has no destination", label))
			continue
		}
		if prev, dup := seen[a.Destination]; dup {
			problems = append(problems, fmt.Sprintf("archives %s and %s share destination %q", prev, label, a.Destination))
		}
		seen[a.Destination] = label
	}
	return problems
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
