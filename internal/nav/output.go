package nav

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ultravioletrs/cube-docs/internal/sidebar"
)

// Format selects the navigation output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Write encodes navs to w in the given format.
func Write(w io.Writer, navs []*Navigation, format Format) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, navs)
	case FormatText:
		return WriteText(w, navs)
	default:
		return fmt.Errorf("unsupported navigation format %q", format)
	}
}

// WriteJSON writes navs as indented JSON. Output is byte-for-byte stable
// for the same input.
func WriteJSON(w io.Writer, navs []*Navigation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(navs)
}

// WriteText writes navs as an indented outline, one entry per line.
func WriteText(w io.Writer, navs []*Navigation) error {
	for i, n := range navs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, n.Sidebar); err != nil {
			return err
		}
		if err := writeTextNodes(w, n.Items); err != nil {
			return err
		}
	}
	return nil
}

func writeTextNodes(w io.Writer, nodes []*Node) error {
	for _, node := range nodes {
		indent := strings.Repeat("  ", node.Depth+1)
		var line string
		switch {
		case node.Broken:
			line = fmt.Sprintf("%s%s [missing: %s]", indent, node.Label, node.DocID)
		case node.Kind == sidebar.KindLink:
			line = fmt.Sprintf("%s%s -> %s", indent, node.Label, node.Href)
		case node.Kind == sidebar.KindCategory && node.Route != "":
			line = fmt.Sprintf("%s%s/ (%s)", indent, node.Label, node.Route)
		case node.Kind == sidebar.KindCategory:
			line = fmt.Sprintf("%s%s/", indent, node.Label)
		default:
			line = fmt.Sprintf("%s%s (%s)", indent, node.Label, node.Route)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := writeTextNodes(w, node.Children); err != nil {
			return err
		}
	}
	return nil
}
