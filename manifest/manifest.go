// Package manifest resolves the release version declared in the mod manifest
// and derives the release tag from it.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/SFSorrow1968/iif-release/errors"
)

// VersionField is the manifest key holding the release version.
const VersionField = "ModVersion"

// DefaultTagPrefix is prepended to the version to form the tag.
const DefaultTagPrefix = "v"

// Resolve reads the manifest at path and returns its declared version.
// Any problem (missing file, malformed JSON, absent, non-string or empty
// version) is a MANIFEST_UNREADABLE error.
func Resolve(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", unreadable(err, path, "cannot read manifest")
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", unreadable(err, path, "manifest is not a JSON object")
	}

	value, ok := doc[VersionField]
	if !ok {
		return "", unreadable(nil, path, fmt.Sprintf("manifest has no %q field", VersionField))
	}
	version, ok := value.(string)
	if !ok {
		return "", unreadable(nil, path, fmt.Sprintf("manifest field %q is %T, not a string", VersionField, value))
	}
	if version == "" {
		return "", unreadable(nil, path, fmt.Sprintf("manifest field %q is empty", VersionField))
	}
	return version, nil
}

func unreadable(cause error, path, msg string) error {
	ctx := map[string]any{"path": path}
	if cause == nil {
		return errors.NewWithContext(errors.CodeManifestUnreadable, msg, ctx)
	}
	return errors.WrapWithContext(cause, errors.CodeManifestUnreadable, msg, ctx)
}

// Descriptor identifies one release. It is a value type and never changes
// during a run.
type Descriptor struct {
	Version string
	Tag     string
}

// NewDescriptor derives the tag by prefixing version.
func NewDescriptor(version, prefix string) Descriptor {
	return Descriptor{Version: version, Tag: prefix + version}
}

// Load resolves the manifest at path and returns its Descriptor.
func Load(path, prefix string) (Descriptor, error) {
	version, err := Resolve(path)
	if err != nil {
		return Descriptor{}, err
	}
	return NewDescriptor(version, prefix), nil
}

// Prerelease reports whether the version is a semantic version with a
// prerelease component, e.g. "2.4.0-beta.1". Versions that do not parse are
// not prereleases; the format is never enforced.
func (d Descriptor) Prerelease() bool {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}
