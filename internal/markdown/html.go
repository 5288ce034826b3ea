package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ExtractHTMLLinks returns the <a href> and <img src> destinations of an
// HTML fragment in document order.
func ExtractHTMLLinks(fragment []byte, opts Options) []Link {
	return extractHTML(fragment, 0, opts)
}

// extractHTML tokenizes rather than parses so that fragments split across
// RawHTML nodes ("<a href=x>" and "</a>") are still read. Malformed markup
// ends the scan without an error.
func extractHTML(fragment []byte, lineOffset int, opts Options) []Link {
	var links []Link
	z := html.NewTokenizer(bytes.NewReader(fragment))
	line := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return links
		}
		tokLine := line
		line += bytes.Count(z.Raw(), []byte("\n"))
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		switch tok.Data {
		case "a":
			if href := getAttr(tok, "href"); href != "" {
				links = append(links, Link{Kind: LinkKindHTML, Destination: href, Line: lineOffset + tokLine})
			}
		case "img":
			if src := getAttr(tok, "src"); src != "" && !opts.SkipImages {
				links = append(links, Link{Kind: LinkKindImage, Destination: src, Text: getAttr(tok, "alt"), Line: lineOffset + tokLine})
			}
		}
	}
}

// getAttr retrieves an attribute value from a token.
func getAttr(tok html.Token, key string) string {
	for _, attr := range tok.Attr {
		if attr.Key == key {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}
