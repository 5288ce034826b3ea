package content

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/git"
)

// Files is a set of slash separated paths relative to one directory.
type Files map[string]struct{}

// Has reports whether rel is in the set.
func (f Files) Has(rel string) bool {
	_, ok := f[path.Clean(strings.TrimPrefix(rel, "./"))]
	return ok
}

// Merge adds every path of other.
func (f Files) Merge(other Files) {
	for p := range other {
		f[p] = struct{}{}
	}
}

// ListDir returns every non-hidden file below dir. A missing dir is an
// empty set.
func ListDir(dir string) (Files, error) {
	files := Files{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Name()[0] == '.' && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return Files{}, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to list directory").
			WithContext("path", dir).
			Build()
	}
	return files, nil
}

// ListSnapshot returns every non-hidden file below dir at the snapshot's
// revision. A missing dir is an empty set.
func ListSnapshot(snap *git.Snapshot, dir string) (Files, error) {
	names, err := snap.ListFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Files{}, nil
	}
	if err != nil {
		return nil, err
	}
	files := Files{}
	for _, rel := range names {
		if !isHidden(rel) {
			files[rel] = struct{}{}
		}
	}
	return files, nil
}

// assetsOf keeps the files of a docs tree that are not documents.
func assetsOf(files Files) Files {
	assets := Files{}
	for rel := range files {
		ext := strings.ToLower(path.Ext(rel))
		if ext != ".md" && ext != ".mdx" {
			assets[rel] = struct{}{}
		}
	}
	return assets
}

func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg != "" && seg[0] == '.' {
			return true
		}
	}
	return false
}
