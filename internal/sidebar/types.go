package sidebar

// Kind distinguishes sidebar entry variants.
type Kind string

const (
	KindDoc      Kind = "doc"
	KindCategory Kind = "category"
	KindLink     Kind = "link"
)

// Entry is one node of a sidebar tree.
type Entry struct {
	Kind  Kind
	ID    string // Document ID (doc)
	Label string // Display label; empty for doc entries that use the document's own label
	Href  string // External URL (link)

	Collapsed   *bool         // Category initial state, nil means the generator default
	Collapsible *bool         // Category can be toggled, nil means the generator default
	Link        *CategoryLink // Page the category label points at (category)
	Items       []Entry       // Children in declaration order (category)

	Path string // Location in the file, e.g. "tutorialSidebar[6].items[2]"
	Line int    // 1-based source line, 0 when unknown
}

// CategoryLinkType selects what a category label links to.
type CategoryLinkType string

const (
	CategoryLinkDoc            CategoryLinkType = "doc"
	CategoryLinkGeneratedIndex CategoryLinkType = "generated-index"
)

// CategoryLink is the optional landing page of a category.
type CategoryLink struct {
	Type        CategoryLinkType
	ID          string // Document ID (doc)
	Slug        string // Route of the generated index (generated-index)
	Title       string
	Description string
}

// Sidebar is a named tree.
type Sidebar struct {
	Name  string
	Items []Entry
}

// Sidebars holds every sidebar of a file in declaration order.
type Sidebars []Sidebar

// Lookup returns the sidebar with the given name.
func (s Sidebars) Lookup(name string) (Sidebar, bool) {
	for _, sb := range s {
		if sb.Name == name {
			return sb, true
		}
	}
	return Sidebar{}, false
}

// Names returns the sidebar names in declaration order.
func (s Sidebars) Names() []string {
	names := make([]string, len(s))
	for i, sb := range s {
		names[i] = sb.Name
	}
	return names
}

// Walk visits every entry of the sidebar depth first, parents before
// children and siblings in declaration order. depth is 0 for top-level
// entries. Returning an error stops the walk.
func (s Sidebar) Walk(fn func(e *Entry, depth int) error) error {
	return walkEntries(s.Items, 0, fn)
}

func walkEntries(items []Entry, depth int, fn func(e *Entry, depth int) error) error {
	for i := range items {
		if err := fn(&items[i], depth); err != nil {
			return err
		}
		if items[i].Kind == KindCategory {
			if err := walkEntries(items[i].Items, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// DocIDs returns every document ID the sidebar references, in traversal
// order. Category landing documents are included where they appear.
func (s Sidebar) DocIDs() []string {
	var ids []string
	_ = s.Walk(func(e *Entry, _ int) error {
		switch {
		case e.Kind == KindDoc:
			ids = append(ids, e.ID)
		case e.Kind == KindCategory && e.Link != nil && e.Link.Type == CategoryLinkDoc:
			ids = append(ids, e.Link.ID)
		}
		return nil
	})
	return ids
}
