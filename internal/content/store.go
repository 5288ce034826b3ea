package content

import (
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/frontmatter"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
	"github.com/ultravioletrs/cube-docs/internal/markdown"
)

// Document is one resolvable content file.
type Document struct {
	ID           string // Resolved document ID
	SourcePath   string // Slash separated path relative to the docs directory
	Title        string
	SidebarLabel string
	Heading      string // First level 1 heading of the body
	Slug         string // Front matter slug, empty when not set
	Draft        bool
	Body         []byte
	Fingerprint  string
}

// Label returns the text a sidebar shows for the document.
func (d *Document) Label() string {
	switch {
	case d.SidebarLabel != "":
		return d.SidebarLabel
	case d.Title != "":
		return d.Title
	case d.Heading != "":
		return d.Heading
	default:
		return d.ID
	}
}

// Store answers document lookups by ID.
type Store interface {
	Resolve(id string) (*Document, bool)
	Exists(id string) bool
	Documents() []*Document
	HasAsset(rel string) bool
}

// Index is an immutable Store built from a set of files.
type Index struct {
	byID    map[string]*Document
	ordered []*Document
	assets  Files
}

var _ Store = (*Index)(nil)

// Resolve returns the document with the given ID.
func (x *Index) Resolve(id string) (*Document, bool) {
	d, ok := x.byID[id]
	return d, ok
}

// Exists reports whether a document with the given ID exists.
func (x *Index) Exists(id string) bool {
	_, ok := x.byID[id]
	return ok
}

// Documents returns all documents sorted by ID.
func (x *Index) Documents() []*Document {
	out := make([]*Document, len(x.ordered))
	copy(out, x.ordered)
	return out
}

// HasAsset reports whether rel, relative to the docs directory, names a
// file of the docs tree that is not a document, such as an image.
func (x *Index) HasAsset(rel string) bool {
	return x.assets.Has(rel)
}

// Len returns the number of documents.
func (x *Index) Len() int { return len(x.ordered) }

// NewIndex builds an Index. Drafts are left out, as in a production build
// of the site. Two documents resolving to the same ID are a fatal
// validation error.
func NewIndex(docs []*Document) (*Index, error) {
	byID := make(map[string]*Document, len(docs))
	for _, d := range docs {
		if d.Draft {
			slog.Debug("Skipping draft document", logfields.DocID(d.ID), logfields.File(d.SourcePath))
			continue
		}
		if prev, dup := byID[d.ID]; dup {
			return nil, ferrors.ValidationError("duplicate document id").
				WithContext("doc_id", d.ID).
				WithContext("first", prev.SourcePath).
				WithContext("second", d.SourcePath).
				Build()
		}
		byID[d.ID] = d
	}
	ordered := make([]*Document, 0, len(byID))
	for _, d := range byID {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return &Index{byID: byID, ordered: ordered, assets: Files{}}, nil
}

func newIndexWithAssets(docs []*Document, files Files) (*Index, error) {
	idx, err := NewIndex(docs)
	if err != nil {
		return nil, err
	}
	idx.assets = assetsOf(files)
	return idx, nil
}

// FromIDs builds an Index of empty documents with the given IDs.
// Repeated IDs collapse into one document.
func FromIDs(ids ...string) *Index {
	docs := make([]*Document, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		docs = append(docs, &Document{ID: id, SourcePath: id + ".md"})
	}
	idx, _ := NewIndex(docs)
	return idx
}

// IsDocumentFile reports whether rel names a Markdown document (not a partial).
func IsDocumentFile(rel string) bool {
	base := path.Base(rel)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(path.Ext(base))
	return ext == ".md" || ext == ".mdx"
}

var numberPrefix = regexp.MustCompile(`^\d+\s*[-_.]+\s*`)

// stripNumberPrefix removes ordering prefixes like "01-", "2_" or "10. ".
// A segment made only of digits is left alone.
func stripNumberPrefix(segment string) string {
	stripped := numberPrefix.ReplaceAllString(segment, "")
	if stripped == "" {
		return segment
	}
	return stripped
}

// DeriveID computes the document ID for a file at rel (slash separated,
// relative to the docs directory) with the given front matter id override.
func DeriveID(rel, frontMatterID string) string {
	rel = strings.TrimPrefix(path.Clean(rel), "./")
	dir, base := path.Split(rel)
	base = strings.TrimSuffix(base, path.Ext(base))

	segments := []string{}
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg != "" {
			segments = append(segments, stripNumberPrefix(seg))
		}
	}

	if frontMatterID != "" {
		base = frontMatterID
	} else {
		base = stripNumberPrefix(base)
	}
	return strings.Join(append(segments, base), "/")
}

// ParseDocument builds a Document from a file's contents.
func ParseDocument(rel string, data []byte) (*Document, error) {
	fm, body, _, err := frontmatter.Split(data)
	if err == nil {
		var header frontmatter.Header
		if header, err = frontmatter.DecodeHeader(fm); err == nil {
			return newDocument(rel, header, fm, body)
		}
	}
	return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid front matter").
		Fatal().
		WithContext("path", rel).
		Build()
}

func newDocument(rel string, header frontmatter.Header, fm, body []byte) (*Document, error) {
	if strings.Contains(header.ID, "/") {
		return nil, ferrors.ValidationError("front matter id must not contain '/'").
			WithContext("path", rel).
			WithContext("id", header.ID).
			Build()
	}

	return &Document{
		ID:           DeriveID(rel, header.ID),
		SourcePath:   rel,
		Title:        header.Title,
		SidebarLabel: header.SidebarLabel,
		Heading:      markdown.FirstHeading(body),
		Slug:         header.Slug,
		Draft:        header.Draft,
		Body:         body,
		Fingerprint:  mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(fm), "\r\n"), string(body)),
	}, nil
}
