package sidebar

import (
	"log/slog"
	"os"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/git"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// Load reads and parses a sidebars file from disk.
func Load(path string) (Sidebars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read sidebars file").
			WithContext("path", path).
			Build()
	}
	sbs, err := Parse(data)
	if err != nil {
		return nil, withFile(err, path)
	}
	slog.Debug("Loaded sidebars", logfields.File(path), logfields.Count(len(sbs)))
	return sbs, nil
}

// LoadRevision reads the sidebars file at rel (relative to the site root)
// as it was at the snapshot's revision.
func LoadRevision(snap *git.Snapshot, rel string) (Sidebars, error) {
	data, err := snap.ReadFile(rel)
	if err != nil {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "sidebars file not found at revision").
			WithContext("path", rel).
			WithContext("revision", snap.Revision()).
			Build()
	}
	sbs, err := Parse(data)
	if err != nil {
		return nil, withFile(err, rel+"@"+snap.Revision())
	}
	slog.Debug("Loaded sidebars from revision",
		logfields.File(rel),
		logfields.Revision(snap.Revision()),
		logfields.Count(len(sbs)))
	return sbs, nil
}

func withFile(err error, file string) error {
	if ce, ok := ferrors.AsClassified(err); ok {
		return ce.WithContext("file", file)
	}
	return err
}
