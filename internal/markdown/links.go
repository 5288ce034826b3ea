package markdown

// Options controls how Markdown is parsed for link analysis.
type Options struct {
	// SkipImages drops image destinations from the result.
	SkipImages bool
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
	LinkKindHTML                LinkKind = "html"
)

// Link is one link destination found in a document body.
type Link struct {
	Kind        LinkKind
	Destination string
	Text        string // Link text, image alt text or empty
	Line        int    // 1-based line in the body, 0 when unknown
}
