// Package config provides the release pipeline configuration.
//
// Defaults reproduce the Infinite Imbue Framework release exactly; a CUE file
// can override any of them. Files are read in this order, later ones winning:
//
//  1. $XDG_CONFIG_HOME/iif-release/config.cue (user-level)
//  2. <root>/release.cue, or the file given with LoadOptions.ConfigFile
//
// JSON is a subset of CUE, so either syntax works:
//
//	product: "Infinite Imbue Framework"
//	vcs:     "go-git"
//	archives: [
//	    {name: "PCVR", source: "bin/Release/PCVR/InfiniteImbueFramework", destination: "InfiniteImbueFramework-PCVR.zip"},
//	]
//
// The repository root is an explicit field so every component receives it
// from here rather than from the process working directory.
package config

import (
	"path/filepath"
	"strings"
)

// Default file names.
const (
	RepoConfigFile = "release.cue"
	UserConfigFile = "iif-release/config.cue"
)

// Command is an external program with arguments. Arguments may contain
// {placeholders} expanded by the pipeline.
type Command struct {
	Program string   `json:"program"`
	Args    []string `json:"args,omitempty"`
}

// Archive is one distributable produced from a build output directory.
type Archive struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Publish configures the hosted release.
type Publish struct {
	// Program is the release-hosting CLI ("gh").
	Program string `json:"program"`
	// Title and Notes accept {product}, {version} and {tag}.
	Title string `json:"title"`
	Notes string `json:"notes"`
	// PrereleaseFromVersion marks the release as a prerelease when the
	// version carries a semver prerelease suffix.
	PrereleaseFromVersion bool `json:"prereleaseFromVersion"`
}

// Config is the complete pipeline configuration.
type Config struct {
	// Root is the absolute repository root.
	Root string `json:"-"`

	Manifest  string `json:"manifest"`
	TagPrefix string `json:"tagPrefix"`
	Product   string `json:"product"`
	Remote    string `json:"remote"`
	// VCS selects the version-control backend: "git-cli" or "go-git".
	VCS string `json:"vcs"`

	// Verify is the build/verification step run before packaging.
	Verify Command `json:"verify"`
	// Archiver packages one archive. {source} and {destination} expand to the
	// raw paths, {source_ps} and {destination_ps} to PowerShell string literals.
	Archiver Command   `json:"archiver"`
	Archives []Archive `json:"archives"`
	Publish  Publish   `json:"publish"`

	// Sources lists the config files that were applied, in order.
	Sources []string `json:"-"`
}

// Default returns the built-in configuration for root.
func Default(root string) *Config {
	return &Config{
		Root:      root,
		Manifest:  "manifest.json",
		TagPrefix: "v",
		Product:   "Infinite Imbue Framework",
		Remote:    "origin",
		VCS:       "git-cli",
		Verify: Command{
			Program: "powershell",
			Args:    []string{"-ExecutionPolicy", "Bypass", "-File", "_agent/ci-smoke.ps1", "-Strict"},
		},
		Archiver: Command{
			Program: "powershell",
			Args:    []string{"-Command", "Compress-Archive -Path {source_ps} -DestinationPath {destination_ps} -Force"},
		},
		Archives: []Archive{
			{
				Name:        "PCVR",
				Source:      "bin/Release/PCVR/InfiniteImbueFramework",
				Destination: "InfiniteImbueFramework-PCVR.zip",
			},
			{
				Name:        "Nomad",
				Source:      "bin/Release/Nomad/InfiniteImbueFramework",
				Destination: "InfiniteImbueFramework-Nomad.zip",
			},
		},
		Publish: Publish{
			Program: "gh",
			Title:   "{product} {version}",
			Notes:   "Release {version}",
		},
	}
}

// ManifestPath returns the manifest location resolved against Root.
func (c *Config) ManifestPath() string {
	return c.resolve(c.Manifest)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Expand replaces {name} placeholders in s with values from vars.
func Expand(s string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// PowerShellLiteral quotes s as a single-quoted PowerShell string, in which
// only the quote itself needs escaping.
func PowerShellLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ExpandArgs applies Expand to every argument.
func ExpandArgs(args []string, vars map[string]string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Expand(a, vars)
	}
	return out
}
