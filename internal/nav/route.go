package nav

import (
	"path"
	"regexp"
	"strings"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
)

// Options controls how routes are built.
type Options struct {
	BaseURL       string // Site base URL path, "/" or "/x/"
	RouteBasePath string // Docs route prefix below the base URL
}

// OptionsFromConfig reads route options from the site configuration.
func OptionsFromConfig(cfg *config.SiteConfig) Options {
	return Options{BaseURL: cfg.BaseURL, RouteBasePath: cfg.Docs.RouteBasePath}
}

// Prefix returns the route every docs page starts with, always ending in "/".
func (o Options) Prefix() string {
	p := joinRoute(o.BaseURL, o.RouteBasePath)
	if p == "/" {
		return p
	}
	return p + "/"
}

// DocRoute returns the route of a document: base URL, docs route base path
// and either the front matter slug or the document ID.
//
// An absolute slug ("/setup") replaces the whole ID. A relative slug
// replaces only the last segment of the ID.
func DocRoute(opts Options, doc *content.Document) string {
	rel := doc.ID
	switch {
	case strings.HasPrefix(doc.Slug, "/"):
		rel = doc.Slug
	case doc.Slug != "":
		if dir := path.Dir(doc.ID); dir != "." {
			rel = dir + "/" + doc.Slug
		} else {
			rel = doc.Slug
		}
	}
	return joinRoute(opts.BaseURL, opts.RouteBasePath, rel)
}

// IndexRoute returns the route of a generated category index. Without an
// explicit slug the route is "category/<label>".
func IndexRoute(opts Options, slug, label string) string {
	if slug == "" {
		slug = "category/" + Slugify(label)
	}
	return joinRoute(opts.BaseURL, opts.RouteBasePath, slug)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// joinRoute joins URL path parts into one absolute route without a
// trailing slash. The root route is "/".
func joinRoute(parts ...string) string {
	return path.Join(append([]string{"/"}, parts...)...)
}
