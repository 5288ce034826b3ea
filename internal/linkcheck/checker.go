package linkcheck

import (
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
	"github.com/ultravioletrs/cube-docs/internal/markdown"
	"github.com/ultravioletrs/cube-docs/internal/nav"
	"github.com/ultravioletrs/cube-docs/internal/sidebar"
)

// Checker resolves links against one site: its configuration, sidebars,
// content store and rendered navigation.
type Checker struct {
	cfg      *config.SiteConfig
	sidebars sidebar.Sidebars
	docs     content.Store
	navs     []*nav.Navigation
	opts     nav.Options

	routes   map[string]struct{}
	bySource map[string]*content.Document
	static   content.Files
}

// NewChecker indexes the routes of every document and every rendered
// navigation page.
func NewChecker(cfg *config.SiteConfig, sbs sidebar.Sidebars, docs content.Store, navs []*nav.Navigation) *Checker {
	c := &Checker{
		cfg:      cfg,
		sidebars: sbs,
		docs:     docs,
		navs:     navs,
		opts:     nav.OptionsFromConfig(cfg),
		routes:   make(map[string]struct{}),
		bySource: make(map[string]*content.Document),
	}
	for _, d := range docs.Documents() {
		c.routes[nav.DocRoute(c.opts, d)] = struct{}{}
		c.bySource[d.SourcePath] = d
	}
	for _, n := range navs {
		for _, r := range n.Routes() {
			c.routes[r] = struct{}{}
		}
	}
	return c
}

// WithStaticFiles checks absolute file links such as /img/logo.png against
// the site's static files. Without it those links are not checked.
func (c *Checker) WithStaticFiles(files content.Files) *Checker {
	c.static = files
	return c
}

// Run checks both scopes. The report is returned even when some links are
// broken; apply Report.Enforce to turn findings into errors.
func (c *Checker) Run() (*Report, error) {
	r := &Report{}
	c.checkNavigation(r)
	if err := c.checkProse(r); err != nil {
		return nil, err
	}
	slog.Debug("Link check finished",
		logfields.Count(r.Checked),
		slog.Int("navigation_findings", len(r.Navigation)),
		slog.Int("prose_findings", len(r.Prose)))
	return r, nil
}

// HasRoute reports whether route is served by a document or a generated
// index page.
func (c *Checker) HasRoute(route string) bool {
	_, ok := c.routes[normalizeRoute(route)]
	return ok
}

func (c *Checker) checkNavigation(r *Report) {
	add := func(source, dest, kind string, reason Reason) {
		r.Navigation = append(r.Navigation, Finding{
			Scope: ScopeNavigation, Source: source, Destination: dest, Kind: kind, Reason: reason,
		})
	}

	for i, item := range c.cfg.Navbar.Items {
		source := fmt.Sprintf("navbar.items[%d]", i)
		switch item.Type {
		case config.NavbarItemDocSidebar:
			r.Checked++
			sb, ok := c.sidebars.Lookup(item.SidebarID)
			if !ok {
				add(source+".sidebar_id", item.SidebarID, string(item.Type), ReasonSidebarNotFound)
				continue
			}
			if !c.sidebarHasPage(sb.Name) {
				add(source+".sidebar_id", item.SidebarID, string(item.Type), ReasonSidebarEmpty)
			}
		case config.NavbarItemDoc:
			r.Checked++
			if !c.docs.Exists(item.DocID) {
				add(source+".doc_id", item.DocID, string(item.Type), ReasonDocNotFound)
			}
		case config.NavbarItemLink:
			if item.To != "" {
				r.Checked++
				if !c.siteRouteExists(item.To) {
					add(source+".to", item.To, "to", ReasonRouteNotFound)
				}
			}
		}
	}

	for s, section := range c.cfg.Footer.Links {
		for i, link := range section.Items {
			if link.To == "" {
				continue
			}
			r.Checked++
			if !c.siteRouteExists(link.To) {
				add(fmt.Sprintf("footer.links[%d].items[%d].to", s, i), link.To, "to", ReasonRouteNotFound)
			}
		}
	}
}

func (c *Checker) sidebarHasPage(name string) bool {
	for _, n := range c.navs {
		if n.Sidebar == name {
			return len(n.Flatten()) > 0
		}
	}
	return false
}

// siteRouteExists resolves a config route, which is relative to the site
// base URL.
func (c *Checker) siteRouteExists(to string) bool {
	p, ok := stripQuery(to)
	if !ok {
		return false
	}
	return c.HasRoute(path.Join(c.opts.BaseURL, p))
}

func (c *Checker) checkProse(r *Report) error {
	for _, doc := range c.docs.Documents() {
		links, err := markdown.ExtractLinks(doc.Body, markdown.Options{})
		if err != nil {
			return err
		}
		for _, l := range links {
			if l.Kind == markdown.LinkKindReferenceDefinition {
				continue
			}
			reason, checked := c.resolveProse(doc, l.Destination)
			if !checked {
				continue
			}
			r.Checked++
			if reason != "" {
				r.Prose = append(r.Prose, Finding{
					Scope:       ScopeProse,
					Source:      doc.SourcePath,
					DocID:       doc.ID,
					Destination: l.Destination,
					Kind:        string(l.Kind),
					Line:        l.Line,
					Reason:      reason,
				})
			}
		}
	}
	return nil
}

// resolveProse returns the reason a document link is broken, or "" when it
// resolves. checked is false for links outside the site (external URLs and
// pure anchors) and for absolute file links when no static files are known.
func (c *Checker) resolveProse(doc *content.Document, dest string) (reason Reason, checked bool) {
	p, ok := stripQuery(dest)
	if !ok || p == "" {
		return "", false
	}

	switch ext := strings.ToLower(path.Ext(p)); {
	case ext == ".md" || ext == ".mdx":
		var target string
		if strings.HasPrefix(p, "/") {
			target = strings.TrimPrefix(path.Clean(p), "/")
		} else {
			target = path.Join(path.Dir(doc.SourcePath), p)
		}
		if _, found := c.bySource[target]; !found {
			return ReasonDocNotFound, true
		}
		return "", true
	case ext != "":
		return c.resolveFile(doc, p)
	}

	var route string
	if strings.HasPrefix(p, "/") {
		route = path.Join(c.opts.BaseURL, p)
		// Links that already carry the base URL are accepted as written.
		if c.HasRoute(p) {
			return "", true
		}
	} else {
		route = path.Join(path.Dir(nav.DocRoute(c.opts, doc)), p)
	}
	if !c.HasRoute(route) {
		return ReasonRouteNotFound, true
	}
	return "", true
}

// resolveFile checks a link to a non-document file. Relative links resolve
// in the docs tree, absolute ones in the static directories.
func (c *Checker) resolveFile(doc *content.Document, p string) (reason Reason, checked bool) {
	if !strings.HasPrefix(p, "/") {
		if !c.docs.HasAsset(path.Join(path.Dir(doc.SourcePath), p)) {
			return ReasonFileNotFound, true
		}
		return "", true
	}

	if c.static == nil {
		return "", false
	}
	clean := path.Clean(p)
	if c.static.Has(strings.TrimPrefix(clean, "/")) {
		return "", true
	}
	if base := c.opts.BaseURL; base != "/" && strings.HasPrefix(clean, base) &&
		c.static.Has(strings.TrimPrefix(clean, base)) {
		return "", true
	}
	return ReasonFileNotFound, true
}

// stripQuery removes the fragment and query of an internal link. ok is
// false for URLs with a scheme or host and for unparsable input.
func stripQuery(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "#") {
		return "", true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return u.Path, true
}

func normalizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return path.Clean("/" + route)
}
