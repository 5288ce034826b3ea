package content

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/git"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// LoadDir reads every document below dir on disk.
func LoadDir(dir string) (*Index, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "docs directory not accessible").
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.FileSystemError("docs path is not a directory").
			WithContext("path", dir).
			Build()
	}

	var docs []*Document
	files := Files{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != dir && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !IsDocumentFile(rel) {
			if d.Name()[0] != '.' {
				files[rel] = struct{}{}
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read document").
				WithContext("path", rel).
				Build()
		}
		doc, err := ParseDocument(rel, data)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to walk docs directory").
			WithContext("path", dir).
			Build()
	}

	slog.Debug("Loaded docs directory", logfields.Path(dir), logfields.Count(len(docs)))
	return newIndexWithAssets(docs, files)
}

// LoadSnapshot reads every document below dir (relative to the site root)
// at the snapshot's revision.
func LoadSnapshot(snap *git.Snapshot, dir string) (*Index, error) {
	var docs []*Document
	err := snap.WalkFiles(dir, func(rel string, contents []byte) error {
		if isHidden(rel) {
			return nil
		}
		if !IsDocumentFile(rel) {
			return nil
		}
		doc, err := ParseDocument(rel, contents)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "docs directory not found at revision").
				WithContext("path", dir).
				WithContext("revision", snap.Revision()).
				Build()
		}
		return nil, err
	}

	slog.Debug("Loaded docs from revision",
		logfields.Path(dir),
		logfields.Revision(snap.Revision()),
		logfields.Count(len(docs)))

	files, err := ListSnapshot(snap, dir)
	if err != nil {
		return nil, err
	}
	return newIndexWithAssets(docs, files)
}
