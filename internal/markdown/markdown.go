package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks parses a Markdown body (front matter already removed) and
// returns its link destinations in document order, followed by reference
// definitions sorted by label. Links inside code spans and code blocks are
// not links and are not returned. Raw HTML is scanned for <a href> and
// <img src>.
func ExtractLinks(body []byte, opts Options) ([]Link, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	lines := newLineIndex(body)

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{
				Kind:        LinkKindAuto,
				Destination: string(node.URL(body)),
				Line:        lines.nodeLine(node),
			})
		case *gmast.Image:
			if !opts.SkipImages {
				links = append(links, Link{
					Kind:        LinkKindImage,
					Destination: string(node.Destination),
					Text:        nodeText(node, body),
					Line:        lines.nodeLine(node),
				})
			}
		case *gmast.Link:
			// Reference-style links resolve to Link nodes with a Destination.
			links = append(links, Link{
				Kind:        LinkKindInline,
				Destination: string(node.Destination),
				Text:        nodeText(node, body),
				Line:        lines.nodeLine(node),
			})
		case *gmast.HTMLBlock:
			raw, offset := blockSource(node, body)
			links = append(links, extractHTML(raw, lines.line(offset)-1, opts)...)
		case *gmast.RawHTML:
			segs := node.Segments
			if segs.Len() == 0 {
				break
			}
			var raw bytes.Buffer
			for i := range segs.Len() {
				seg := segs.At(i)
				raw.Write(seg.Value(body))
			}
			links = append(links, extractHTML(raw.Bytes(), lines.line(segs.At(0).Start)-1, opts)...)
		}
		return gmast.WalkContinue, nil
	})
	// Reference definitions live in the parse context, not in the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}

	return links, nil
}

func blockSource(node *gmast.HTMLBlock, body []byte) ([]byte, int) {
	var raw bytes.Buffer
	lines := node.Lines()
	start := 0
	for i := range lines.Len() {
		seg := lines.At(i)
		if i == 0 {
			start = seg.Start
		}
		raw.Write(seg.Value(body))
	}
	if node.HasClosure() {
		raw.Write(node.ClosureLine.Value(body))
	}
	return raw.Bytes(), start
}

// nodeText concatenates the text segments below n.
func nodeText(n gmast.Node, body []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*gmast.Text); ok {
				buf.Write(t.Segment.Value(body))
			}
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}

// lineIndex maps byte offsets in the body to 1-based line numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(body []byte) lineIndex {
	starts := []int{0}
	for i, b := range body {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (x lineIndex) line(offset int) int {
	return sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset })
}

// nodeLine finds the line of an inline node through its first text segment.
func (x lineIndex) nodeLine(n gmast.Node) int {
	for c := gmast.Node(n); c != nil; c = c.FirstChild() {
		if t, ok := c.(*gmast.Text); ok {
			return x.line(t.Segment.Start)
		}
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == gmast.TypeBlock && p.Lines().Len() > 0 {
			return x.line(p.Lines().At(0).Start)
		}
	}
	return 0
}
