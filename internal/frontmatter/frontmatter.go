// Package frontmatter splits YAML front matter from Markdown documents and
// decodes the fields the navigation cares about.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Header holds the front matter fields that affect document identity and routing.
type Header struct {
	ID           string `yaml:"id"`
	Slug         string `yaml:"slug"`
	Title        string `yaml:"title"`
	SidebarLabel string `yaml:"sidebar_label"`
	Draft        bool   `yaml:"draft"` // Left out of the content index
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Parse splits content and decodes the header. Unknown fields are ignored.
func Parse(content []byte) (Header, []byte, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return Header{}, nil, err
	}
	h, err := DecodeHeader(fm)
	if err != nil {
		return Header{}, nil, err
	}
	return h, body, nil
}

// DecodeHeader decodes raw front matter (without delimiters).
func DecodeHeader(fm []byte) (Header, error) {
	var h Header
	if len(bytes.TrimSpace(fm)) == 0 {
		return h, nil
	}
	if err := yaml.Unmarshal(fm, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
