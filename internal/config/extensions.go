package config

import "sort"

// Markdown extension names accepted in markdown.extensions.
const (
	ExtensionMath    = "math"
	ExtensionMermaid = "mermaid"
)

// Extension describes the generator plugins a Markdown extension resolves to.
type Extension struct {
	Name          string
	RemarkPlugins []string
	RehypePlugins []string
	// Theme is required in themes when the extension is enabled.
	Theme string
}

// ThemeMermaid renders mermaid code blocks.
const ThemeMermaid = "@docusaurus/theme-mermaid"

var extensionRegistry = map[string]Extension{
	ExtensionMath: {
		Name:          ExtensionMath,
		RemarkPlugins: []string{"remark-math"},
		RehypePlugins: []string{"rehype-katex"},
	},
	ExtensionMermaid: {
		Name:  ExtensionMermaid,
		Theme: ThemeMermaid,
	},
}

var knownThemes = map[string]struct{}{
	"@docusaurus/theme-classic":        {},
	"@docusaurus/theme-live-codeblock": {},
	"@docusaurus/theme-search-algolia": {},
	ThemeMermaid:                       {},
}

// LookupExtension resolves a Markdown extension by name.
func LookupExtension(name string) (Extension, bool) {
	ext, ok := extensionRegistry[name]
	return ext, ok
}

// KnownExtensions lists registered extension names, sorted.
func KnownExtensions() []string {
	names := make([]string, 0, len(extensionRegistry))
	for name := range extensionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownTheme reports whether the generator ships the named theme package.
func IsKnownTheme(name string) bool {
	_, ok := knownThemes[name]
	return ok
}
