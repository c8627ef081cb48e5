package config

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/adrg/xdg"

	"github.com/SFSorrow1968/iif-release/errors"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigFile replaces <root>/release.cue. It must exist.
	ConfigFile string

	// SkipUserConfig ignores the XDG user-level file.
	SkipUserConfig bool

	// SkipValidation disables Validate after loading.
	SkipValidation bool
}

// fileConfig is the on-disk shape. Pointer and nil-slice fields tell an
// absent key apart from an explicit value.
type fileConfig struct {
	Manifest  *string      `json:"manifest,omitempty"`
	TagPrefix *string      `json:"tagPrefix,omitempty"`
	Product   *string      `json:"product,omitempty"`
	Remote    *string      `json:"remote,omitempty"`
	VCS       *string      `json:"vcs,omitempty"`
	Verify    *Command     `json:"verify,omitempty"`
	Archiver  *Command     `json:"archiver,omitempty"`
	Archives  []Archive    `json:"archives,omitempty"`
	Publish   *filePublish `json:"publish,omitempty"`
}

type filePublish struct {
	Program               *string `json:"program,omitempty"`
	Title                 *string `json:"title,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	PrereleaseFromVersion *bool   `json:"prereleaseFromVersion,omitempty"`
}

// Load builds the configuration for the repository at root.
func Load(root string, opts LoadOptions) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"cannot resolve repository root", map[string]any{"root": root})
	}
	cfg := Default(abs)

	if !opts.SkipUserConfig {
		if path, searchErr := xdg.SearchConfigFile(UserConfigFile); searchErr == nil {
			if err := cfg.applyFile(path); err != nil {
				return nil, err
			}
		}
	}

	repoFile := opts.ConfigFile
	required := repoFile != ""
	if !required {
		repoFile = filepath.Join(abs, RepoConfigFile)
	}
	if _, statErr := os.Stat(repoFile); statErr == nil {
		if err := cfg.applyFile(repoFile); err != nil {
			return nil, err
		}
	} else if required || !stderrors.Is(statErr, os.ErrNotExist) {
		return nil, errors.WrapWithContext(statErr, errors.CodeInvalidConfig,
			"cannot read configuration file", map[string]any{"path": repoFile})
	}

	if !opts.SkipValidation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyFile decodes the CUE file at path and overlays it on c.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"cannot read configuration file", map[string]any{"path": path})
	}

	fc, err := decode(path, data)
	if err != nil {
		return err
	}
	c.merge(fc)
	c.Sources = append(c.Sources, path)
	return nil
}

func decode(path string, data []byte) (*fileConfig, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"failed to load configuration", map[string]any{"path": path})
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"configuration is not concrete", map[string]any{"path": path})
	}

	var fc fileConfig
	if err := value.Decode(&fc); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"failed to decode configuration", map[string]any{"path": path})
	}
	return &fc, nil
}

func (c *Config) merge(fc *fileConfig) {
	setString(&c.Manifest, fc.Manifest)
	setString(&c.TagPrefix, fc.TagPrefix)
	setString(&c.Product, fc.Product)
	setString(&c.Remote, fc.Remote)
	setString(&c.VCS, fc.VCS)
	if fc.Verify != nil {
		c.Verify = *fc.Verify
	}
	if fc.Archiver != nil {
		c.Archiver = *fc.Archiver
	}
	if fc.Archives != nil {
		c.Archives = fc.Archives
	}
	if p := fc.Publish; p != nil {
		setString(&c.Publish.Program, p.Program)
		setString(&c.Publish.Title, p.Title)
		setString(&c.Publish.Notes, p.Notes)
		if p.PrereleaseFromVersion != nil {
			c.Publish.PrereleaseFromVersion = *p.PrereleaseFromVersion
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
