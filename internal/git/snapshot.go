package git

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// Snapshot is the tree of one commit, addressed relative to the site root.
type Snapshot struct {
	revision string
	hash     plumbing.Hash
	tree     *object.Tree
	prefix   string // site root relative to the repository root, slash separated
}

// OpenSnapshot resolves revision (anything git rev-parse accepts that go-git
// supports: branch, tag, hash, HEAD~n) in the repository containing siteRoot.
func OpenSnapshot(siteRoot, revision string) (*Snapshot, error) {
	absRoot, err := filepath.Abs(siteRoot)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve site root").Build()
	}

	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ferrors.GitError("failed to open git repository").WithCause(err).
			WithContext("path", absRoot).
			Build()
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, ferrors.GitError("failed to resolve revision").WithCause(err).
			WithContext("revision", revision).
			Build()
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, ferrors.GitError("failed to load commit").WithCause(err).
			WithContext("revision", revision).
			Build()
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, ferrors.GitError("failed to load commit tree").WithCause(err).
			WithContext("revision", revision).
			Build()
	}

	prefix := ""
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		repoRoot, _ := filepath.EvalSymlinks(wt.Filesystem.Root())
		siteAbs, _ := filepath.EvalSymlinks(absRoot)
		if rel, relErr := filepath.Rel(repoRoot, siteAbs); relErr == nil && rel != "." {
			prefix = filepath.ToSlash(rel)
		}
	}

	slog.Debug("Opened git snapshot",
		logfields.Revision(revision),
		slog.String("commit", hash.String()),
		logfields.Path(absRoot))

	return &Snapshot{revision: revision, hash: *hash, tree: tree, prefix: prefix}, nil
}

// Revision returns the revision string the snapshot was opened with.
func (s *Snapshot) Revision() string { return s.revision }

// Hash returns the resolved commit hash.
func (s *Snapshot) Hash() string { return s.hash.String() }

func (s *Snapshot) repoPath(rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	if s.prefix == "" {
		return path.Clean(rel)
	}
	return path.Join(s.prefix, rel)
}

// ReadFile returns the contents of rel (relative to the site root) at the
// snapshot revision. Missing files wrap fs.ErrNotExist.
func (s *Snapshot) ReadFile(rel string) ([]byte, error) {
	f, err := s.tree.File(s.repoPath(rel))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s at %s: %w", rel, s.revision, fs.ErrNotExist)
		}
		return nil, ferrors.GitError("failed to read file from revision").WithCause(err).
			WithContext("path", rel).
			WithContext("revision", s.revision).
			Build()
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, ferrors.GitError("failed to read blob").WithCause(err).
			WithContext("path", rel).
			Build()
	}
	return []byte(contents), nil
}

// WalkFiles calls fn for every file below dir (relative to the site root),
// passing the path relative to dir. A missing dir wraps fs.ErrNotExist.
func (s *Snapshot) WalkFiles(dir string, fn func(rel string, contents []byte) error) error {
	sub, err := s.subtree(dir)
	if err != nil {
		return err
	}
	return sub.Files().ForEach(func(f *object.File) error {
		contents, err := f.Contents()
		if err != nil {
			return ferrors.GitError("failed to read blob").WithCause(err).
				WithContext("path", f.Name).
				Build()
		}
		return fn(f.Name, []byte(contents))
	})
}

// ListFiles returns the paths of every file below dir, relative to dir,
// without reading their contents. A missing dir yields fs.ErrNotExist.
func (s *Snapshot) ListFiles(dir string) ([]string, error) {
	sub, err := s.subtree(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	err = sub.Files().ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, ferrors.GitError("failed to list directory at revision").WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return names, nil
}

func (s *Snapshot) subtree(dir string) (*object.Tree, error) {
	p := s.repoPath(dir)
	if p == "." {
		return s.tree, nil
	}
	sub, err := s.tree.Tree(p)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, fmt.Errorf("%s at %s: %w", dir, s.revision, fs.ErrNotExist)
		}
		return nil, ferrors.GitError("failed to open directory at revision").WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return sub, nil
}
