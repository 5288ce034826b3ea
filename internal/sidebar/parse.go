package sidebar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

// Parse decodes a sidebars document. Every structural problem is a fatal
// validation error carrying the sidebar name and the entry path.
func Parse(data []byte) (Sidebars, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ferrors.ValidationError("sidebars file is empty").Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to parse sidebars YAML").
			Fatal().
			Build()
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, structuralError("", "", root, "sidebars file must map sidebar names to entry lists")
	}
	if len(root.Content) == 0 {
		return nil, ferrors.ValidationError("sidebars file defines no sidebars").Build()
	}

	p := &parser{}
	out := make(Sidebars, 0, len(root.Content)/2)
	seen := make(map[string]int, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		name, err := scalarString(keyNode)
		if err != nil || strings.TrimSpace(name) == "" {
			return nil, structuralError("", "", keyNode, "sidebar name must be a non-empty string")
		}
		if line, dup := seen[name]; dup {
			return nil, structuralError(name, name, keyNode, "duplicate sidebar name").
				WithContext("first_line", line)
		}
		seen[name] = keyNode.Line

		items, err := p.sidebarItems(name, valueNode)
		if err != nil {
			return nil, err
		}
		out = append(out, Sidebar{Name: name, Items: items})
	}
	return out, nil
}

type parser struct{}

// sidebarItems accepts a list of entries or the shorthand mapping of
// category labels to item lists.
func (p *parser) sidebarItems(name string, node *yaml.Node) ([]Entry, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		return p.entries(name, name, node)
	case yaml.MappingNode:
		items := make([]Entry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			path := fmt.Sprintf("%s[%d]", name, i/2)
			e, err := p.shorthandCategory(name, path, node.Content[i], node.Content[i+1])
			if err != nil {
				return nil, err
			}
			items = append(items, e)
		}
		return items, nil
	default:
		return nil, structuralError(name, name, node, "sidebar must be a list of entries")
	}
}

func (p *parser) entries(sidebar, path string, node *yaml.Node) ([]Entry, error) {
	items := make([]Entry, 0, len(node.Content))
	for i, child := range node.Content {
		e, err := p.entry(sidebar, fmt.Sprintf("%s[%d]", path, i), child)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (p *parser) entry(sidebar, path string, node *yaml.Node) (Entry, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		id, err := scalarString(node)
		if err != nil {
			return Entry{}, structuralError(sidebar, path, node, "sidebar leaf must be a document ID string").
				WithContext("value", node.Value)
		}
		if strings.TrimSpace(id) == "" {
			return Entry{}, structuralError(sidebar, path, node, "document ID cannot be empty")
		}
		return Entry{Kind: KindDoc, ID: id, Path: path, Line: node.Line}, nil
	case yaml.MappingNode:
		fields, err := mappingFields(sidebar, path, node)
		if err != nil {
			return Entry{}, err
		}
		typeNode, typed := fields["type"]
		if !typed {
			if len(fields) == 1 {
				return p.shorthandCategory(sidebar, path, node.Content[0], node.Content[1])
			}
			return Entry{}, structuralError(sidebar, path, node, "sidebar entry object requires a type")
		}
		kind, err := scalarString(typeNode)
		if err != nil {
			return Entry{}, structuralError(sidebar, path, typeNode, "entry type must be a string")
		}
		switch Kind(kind) {
		case KindDoc:
			return p.docEntry(sidebar, path, node, fields)
		case KindCategory:
			return p.categoryEntry(sidebar, path, node, fields)
		case KindLink:
			return p.linkEntry(sidebar, path, node, fields)
		default:
			return Entry{}, structuralError(sidebar, path, typeNode, "unknown sidebar entry type, valid options: category, doc, link").
				WithContext("value", kind)
		}
	default:
		return Entry{}, structuralError(sidebar, path, node, "sidebar entry must be a document ID or an object")
	}
}

func (p *parser) docEntry(sidebar, path string, node *yaml.Node, fields map[string]*yaml.Node) (Entry, error) {
	if err := allowKeys(sidebar, path, node, "type", "id", "label"); err != nil {
		return Entry{}, err
	}
	id, err := requiredString(sidebar, path, node, fields, "id")
	if err != nil {
		return Entry{}, err
	}
	label, err := optionalString(sidebar, path, fields, "label")
	if err != nil {
		return Entry{}, err
	}
	return Entry{Kind: KindDoc, ID: id, Label: label, Path: path, Line: node.Line}, nil
}

func (p *parser) linkEntry(sidebar, path string, node *yaml.Node, fields map[string]*yaml.Node) (Entry, error) {
	if err := allowKeys(sidebar, path, node, "type", "label", "href"); err != nil {
		return Entry{}, err
	}
	label, err := requiredString(sidebar, path, node, fields, "label")
	if err != nil {
		return Entry{}, err
	}
	href, err := requiredString(sidebar, path, node, fields, "href")
	if err != nil {
		return Entry{}, err
	}
	if u, perr := url.Parse(href); perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Entry{}, structuralError(sidebar, path+".href", fields["href"], "link href must be an absolute http(s) URL").
			WithContext("value", href)
	}
	return Entry{Kind: KindLink, Label: label, Href: href, Path: path, Line: node.Line}, nil
}

func (p *parser) categoryEntry(sidebar, path string, node *yaml.Node, fields map[string]*yaml.Node) (Entry, error) {
	if err := allowKeys(sidebar, path, node, "type", "label", "items", "collapsed", "collapsible", "link"); err != nil {
		return Entry{}, err
	}
	label, err := requiredString(sidebar, path, node, fields, "label")
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Kind: KindCategory, Label: label, Path: path, Line: node.Line}

	if e.Collapsed, err = optionalBool(sidebar, path, fields, "collapsed"); err != nil {
		return Entry{}, err
	}
	if e.Collapsible, err = optionalBool(sidebar, path, fields, "collapsible"); err != nil {
		return Entry{}, err
	}
	if linkNode, ok := fields["link"]; ok {
		if e.Link, err = categoryLink(sidebar, path+".link", linkNode); err != nil {
			return Entry{}, err
		}
	}

	itemsNode, ok := fields["items"]
	if !ok {
		return Entry{}, structuralError(sidebar, path, node, "category requires items")
	}
	if itemsNode.Kind != yaml.SequenceNode {
		return Entry{}, structuralError(sidebar, path+".items", itemsNode, "category items must be a list")
	}
	if e.Items, err = p.entries(sidebar, path+".items", itemsNode); err != nil {
		return Entry{}, err
	}
	if len(e.Items) == 0 && e.Link == nil {
		return Entry{}, structuralError(sidebar, path+".items", itemsNode, "category without a link must have at least one item")
	}
	return e, nil
}

// shorthandCategory handles "Label: [items]".
func (p *parser) shorthandCategory(sidebar, path string, keyNode, valueNode *yaml.Node) (Entry, error) {
	label, err := scalarString(keyNode)
	if err != nil || strings.TrimSpace(label) == "" {
		return Entry{}, structuralError(sidebar, path, keyNode, "category label must be a non-empty string")
	}
	if valueNode.Kind != yaml.SequenceNode {
		return Entry{}, structuralError(sidebar, path, valueNode, "category shorthand must map a label to a list of items")
	}
	items, err := p.entries(sidebar, path+".items", valueNode)
	if err != nil {
		return Entry{}, err
	}
	if len(items) == 0 {
		return Entry{}, structuralError(sidebar, path+".items", valueNode, "category without a link must have at least one item")
	}
	return Entry{Kind: KindCategory, Label: label, Items: items, Path: path, Line: keyNode.Line}, nil
}

func categoryLink(sidebar, path string, node *yaml.Node) (*CategoryLink, error) {
	if node.Kind != yaml.MappingNode {
		return nil, structuralError(sidebar, path, node, "category link must be an object")
	}
	fields, err := mappingFields(sidebar, path, node)
	if err != nil {
		return nil, err
	}
	typ, err := requiredString(sidebar, path, node, fields, "type")
	if err != nil {
		return nil, err
	}

	switch CategoryLinkType(typ) {
	case CategoryLinkDoc:
		if err := allowKeys(sidebar, path, node, "type", "id"); err != nil {
			return nil, err
		}
		id, err := requiredString(sidebar, path, node, fields, "id")
		if err != nil {
			return nil, err
		}
		return &CategoryLink{Type: CategoryLinkDoc, ID: id}, nil
	case CategoryLinkGeneratedIndex:
		if err := allowKeys(sidebar, path, node, "type", "slug", "title", "description"); err != nil {
			return nil, err
		}
		link := &CategoryLink{Type: CategoryLinkGeneratedIndex}
		if link.Slug, err = optionalString(sidebar, path, fields, "slug"); err != nil {
			return nil, err
		}
		if link.Title, err = optionalString(sidebar, path, fields, "title"); err != nil {
			return nil, err
		}
		if link.Description, err = optionalString(sidebar, path, fields, "description"); err != nil {
			return nil, err
		}
		if link.Slug != "" && !strings.HasPrefix(link.Slug, "/") {
			return nil, structuralError(sidebar, path+".slug", fields["slug"], "generated index slug must start with '/'").
				WithContext("value", link.Slug)
		}
		return link, nil
	default:
		return nil, structuralError(sidebar, path+".type", fields["type"], "unknown category link type, valid options: doc, generated-index").
			WithContext("value", typ)
	}
}

func mappingFields(sidebar, path string, node *yaml.Node) (map[string]*yaml.Node, error) {
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, err := scalarString(node.Content[i])
		if err != nil {
			return nil, structuralError(sidebar, path, node.Content[i], "object keys must be strings")
		}
		if _, dup := fields[key]; dup {
			return nil, structuralError(sidebar, path, node.Content[i], "duplicate key").
				WithContext("key", key)
		}
		fields[key] = node.Content[i+1]
	}
	return fields, nil
}

// allowKeys reports the first key of node, in file order, that is not allowed.
func allowKeys(sidebar, path string, node *yaml.Node, allowed ...string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !slices.Contains(allowed, key) {
			return structuralError(sidebar, path, node.Content[i], "unknown key").
				WithContext("key", key).
				WithContext("valid_keys", strings.Join(allowed, ", "))
		}
	}
	return nil
}

func requiredString(sidebar, path string, parent *yaml.Node, fields map[string]*yaml.Node, key string) (string, error) {
	node, ok := fields[key]
	if !ok {
		return "", structuralError(sidebar, path, parent, fmt.Sprintf("%s is required", key))
	}
	s, err := scalarString(node)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", structuralError(sidebar, path+"."+key, node, fmt.Sprintf("%s must be a non-empty string", key))
	}
	return s, nil
}

func optionalString(sidebar, path string, fields map[string]*yaml.Node, key string) (string, error) {
	node, ok := fields[key]
	if !ok {
		return "", nil
	}
	s, err := scalarString(node)
	if err != nil {
		return "", structuralError(sidebar, path+"."+key, node, fmt.Sprintf("%s must be a string", key))
	}
	return s, nil
}

func optionalBool(sidebar, path string, fields map[string]*yaml.Node, key string) (*bool, error) {
	node, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var b bool
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!bool" || node.Decode(&b) != nil {
		return nil, structuralError(sidebar, path+"."+key, node, fmt.Sprintf("%s must be a boolean", key))
	}
	return &b, nil
}

var errNotString = errors.New("not a string scalar")

// scalarString returns the value of a plain or quoted string scalar. Numbers,
// booleans and nulls are rejected so that "- 42" is not silently an ID.
func scalarString(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", errNotString
	}
	return node.Value, nil
}

func structuralError(sidebar, path string, node *yaml.Node, message string) *ferrors.ClassifiedError {
	b := ferrors.ValidationError(message)
	if sidebar != "" {
		b = b.WithContext("sidebar", sidebar)
	}
	if path != "" {
		b = b.WithContext("path", path)
	}
	if node != nil && node.Line > 0 {
		b = b.WithContext("line", node.Line)
	}
	return b.Build()
}
