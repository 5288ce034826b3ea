package sidebar

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

// ReadVersions reads the list of named documentation versions, newest first.
// A missing file means the site is not versioned and yields no versions.
func ReadVersions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read versions file").
			WithContext("path", path).
			Build()
	}
	versions, err := ParseVersions(data)
	if err != nil {
		return nil, withFile(err, path)
	}
	return versions, nil
}

// ParseVersions decodes a YAML list of version names.
func ParseVersions(data []byte) ([]string, error) {
	var versions []string
	if err := yaml.Unmarshal(data, &versions); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "versions file must be a list of names").
			Fatal().
			Build()
	}
	seen := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		if strings.TrimSpace(v) == "" || strings.ContainsAny(v, `/\`) || v == "." || v == ".." {
			return nil, ferrors.ValidationError("invalid version name").
				WithContext("version", v).
				Build()
		}
		if _, dup := seen[v]; dup {
			return nil, ferrors.ValidationError("duplicate version name").
				WithContext("version", v).
				Build()
		}
		seen[v] = struct{}{}
	}
	return versions, nil
}

// VersionedSidebarPath returns the sidebars file of a named version inside dir.
func VersionedSidebarPath(dir, version string) string {
	return filepath.Join(dir, "version-"+version+"-sidebars.yaml")
}

// VersionedDocsPath returns the content directory of a named version inside dir.
func VersionedDocsPath(dir, version string) string {
	return filepath.Join(dir, "version-"+version)
}
