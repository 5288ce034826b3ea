package nav

// Flatten returns the page nodes of the navigation in reading order:
// depth first, parents before children, siblings in declaration order.
// Links, broken entries and categories without a landing page are skipped.
func (n *Navigation) Flatten() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, node := range nodes {
			if node.IsPage() {
				out = append(out, node)
			}
			walk(node.Children)
		}
	}
	walk(n.Items)
	return out
}

// Page is a page node with its neighbours in reading order.
type Page struct {
	Node     *Node
	Previous *Node
	Next     *Node
}

// Pages returns the previous/next pager for every page of the navigation.
func (n *Navigation) Pages() []Page {
	flat := n.Flatten()
	pages := make([]Page, len(flat))
	for i, node := range flat {
		pages[i].Node = node
		if i > 0 {
			pages[i].Previous = flat[i-1]
		}
		if i+1 < len(flat) {
			pages[i].Next = flat[i+1]
		}
	}
	return pages
}

// PageFor returns the pager of the first occurrence of a document.
func (n *Navigation) PageFor(docID string) (Page, bool) {
	for _, p := range n.Pages() {
		if p.Node.DocID == docID {
			return p, true
		}
	}
	return Page{}, false
}

// Routes returns every page route of the navigation.
func (n *Navigation) Routes() []string {
	flat := n.Flatten()
	routes := make([]string, len(flat))
	for i, node := range flat {
		routes[i] = node.Route
	}
	return routes
}
