package nav

import (
	"github.com/ultravioletrs/cube-docs/internal/content"
	"github.com/ultravioletrs/cube-docs/internal/sidebar"
)

// DocumentLookup resolves document IDs to documents.
type DocumentLookup interface {
	Resolve(id string) (*content.Document, bool)
}

// Node is one rendered sidebar entry.
type Node struct {
	Kind        sidebar.Kind `json:"kind"`
	Label       string       `json:"label"`
	DocID       string       `json:"doc_id,omitempty"`
	Route       string       `json:"route,omitempty"`
	Href        string       `json:"href,omitempty"`
	Position    int          `json:"position"`
	Depth       int          `json:"depth"`
	Breadcrumb  []string     `json:"breadcrumb"`
	Collapsed   *bool        `json:"collapsed,omitempty"`
	Collapsible *bool        `json:"collapsible,omitempty"`
	Broken      bool         `json:"broken,omitempty"` // Document did not resolve; no route
	Children    []*Node      `json:"children,omitempty"`
}

// IsPage reports whether the node has a page of its own on the site.
func (n *Node) IsPage() bool {
	return n.Route != "" && !n.Broken
}

// Navigation is the rendered form of one sidebar.
type Navigation struct {
	Sidebar string  `json:"sidebar"`
	Items   []*Node `json:"items"`
}

// Render produces the navigation of one sidebar. Entries whose document
// does not resolve are kept, labelled with their ID and marked broken, so
// that a lenient policy still renders every declared entry in place.
func Render(sb sidebar.Sidebar, docs DocumentLookup, opts Options) *Navigation {
	r := renderer{docs: docs, opts: opts}
	return &Navigation{
		Sidebar: sb.Name,
		Items:   r.nodes(sb.Items, 0, nil),
	}
}

// RenderAll renders every sidebar in declaration order.
func RenderAll(sbs sidebar.Sidebars, docs DocumentLookup, opts Options) []*Navigation {
	out := make([]*Navigation, len(sbs))
	for i, sb := range sbs {
		out[i] = Render(sb, docs, opts)
	}
	return out
}

type renderer struct {
	docs DocumentLookup
	opts Options
}

func (r renderer) nodes(entries []sidebar.Entry, depth int, trail []string) []*Node {
	out := make([]*Node, 0, len(entries))
	for i := range entries {
		out = append(out, r.node(&entries[i], i, depth, trail))
	}
	return out
}

func (r renderer) node(e *sidebar.Entry, position, depth int, trail []string) *Node {
	n := &Node{Kind: e.Kind, Label: e.Label, Position: position, Depth: depth}

	switch e.Kind {
	case sidebar.KindDoc:
		n.DocID = e.ID
		if doc, ok := r.docs.Resolve(e.ID); ok {
			n.Route = DocRoute(r.opts, doc)
			if n.Label == "" {
				n.Label = doc.Label()
			}
		} else {
			n.Broken = true
			if n.Label == "" {
				n.Label = e.ID
			}
		}
	case sidebar.KindLink:
		n.Href = e.Href
	case sidebar.KindCategory:
		n.Collapsed = e.Collapsed
		n.Collapsible = e.Collapsible
		if e.Link != nil {
			r.categoryLink(n, e)
		}
	}

	n.Breadcrumb = appendTrail(trail, n.Label)
	if e.Kind == sidebar.KindCategory {
		n.Children = r.nodes(e.Items, depth+1, n.Breadcrumb)
	}
	return n
}

func (r renderer) categoryLink(n *Node, e *sidebar.Entry) {
	switch e.Link.Type {
	case sidebar.CategoryLinkDoc:
		n.DocID = e.Link.ID
		if doc, ok := r.docs.Resolve(e.Link.ID); ok {
			n.Route = DocRoute(r.opts, doc)
		} else {
			n.Broken = true
		}
	case sidebar.CategoryLinkGeneratedIndex:
		n.Route = IndexRoute(r.opts, e.Link.Slug, e.Label)
	}
}

// appendTrail copies trail so sibling breadcrumbs never share backing arrays.
func appendTrail(trail []string, label string) []string {
	out := make([]string, len(trail)+1)
	copy(out, trail)
	out[len(trail)] = label
	return out
}
