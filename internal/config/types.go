package config

import (
	"strconv"
	"strings"
	"time"
)

// SiteConfig is the site-wide descriptor handed to the static site generator.
// One instance exists per run; it is not mutated after Validate succeeds.
type SiteConfig struct {
	Title            string `yaml:"title"`
	Tagline          string `yaml:"tagline,omitempty"`
	Favicon          string `yaml:"favicon,omitempty"`
	URL              string `yaml:"url"`
	BaseURL          string `yaml:"base_url"`
	OrganizationName string `yaml:"organization_name,omitempty"`
	ProjectName      string `yaml:"project_name,omitempty"`

	OnBrokenLinks         Strictness `yaml:"on_broken_links,omitempty"`
	OnBrokenMarkdownLinks Strictness `yaml:"on_broken_markdown_links,omitempty"`

	I18n        I18nConfig     `yaml:"i18n"`
	Markdown    MarkdownConfig `yaml:"markdown,omitempty"`
	Themes      []string       `yaml:"themes,omitempty"`
	Docs        DocsConfig     `yaml:"docs,omitempty"`
	Theme       ThemeConfig    `yaml:"theme,omitempty"`
	Stylesheets []Stylesheet   `yaml:"stylesheets,omitempty"`
	Navbar      NavbarConfig   `yaml:"navbar,omitempty"`
	Footer      FooterConfig   `yaml:"footer,omitempty"`
	Prism       PrismConfig    `yaml:"prism,omitempty"`
	Image       string         `yaml:"image,omitempty"`

	// Directories copied to the site root; absolute links like /img/x.png
	// resolve against them.
	StaticDirectories []string `yaml:"static_directories,omitempty"`

	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Reporting ReportingConfig `yaml:"reporting,omitempty"`
}

// I18nConfig declares the supported locales.
type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

// MarkdownConfig lists enabled Markdown processing extensions.
type MarkdownConfig struct {
	Mermaid    bool     `yaml:"mermaid,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// EnabledExtensions returns the declared extensions plus mermaid when the
// mermaid flag is set, without duplicates and in declaration order.
func (m MarkdownConfig) EnabledExtensions() []string {
	out := make([]string, 0, len(m.Extensions)+1)
	seen := make(map[string]struct{}, len(m.Extensions)+1)
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, e := range m.Extensions {
		add(e)
	}
	if m.Mermaid {
		add(ExtensionMermaid)
	}
	return out
}

// DocsConfig carries the docs plugin options.
type DocsConfig struct {
	Path              string `yaml:"path,omitempty"`               // Content directory, relative to the site root
	RouteBasePath     string `yaml:"route_base_path,omitempty"`    // URL prefix for every doc route
	SidebarPath       string `yaml:"sidebar_path,omitempty"`       // Sidebars file, relative to the site root
	EditURL           string `yaml:"edit_url,omitempty"`           // Prefix for "edit this page" links
	VersionsPath      string `yaml:"versions_path,omitempty"`      // Versions list, relative to the site root
	VersionedSidebars string `yaml:"versioned_sidebars,omitempty"` // Directory of versioned sidebar files
	VersionedDocs     string `yaml:"versioned_docs,omitempty"`     // Directory of versioned content trees
}

// ThemeConfig holds classic theme options.
type ThemeConfig struct {
	CustomCSS string `yaml:"custom_css,omitempty"`
}

// Stylesheet is an external stylesheet reference injected into every page.
type Stylesheet struct {
	Href        string `yaml:"href"`
	Type        string `yaml:"type,omitempty"`
	Integrity   string `yaml:"integrity,omitempty"`
	CrossOrigin string `yaml:"crossorigin,omitempty"`
}

// NavbarConfig is the top navigation bar.
type NavbarConfig struct {
	Logo  *Logo        `yaml:"logo,omitempty"`
	Items []NavbarItem `yaml:"items,omitempty"`
}

// Logo describes the navbar logo.
type Logo struct {
	Alt     string `yaml:"alt,omitempty"`
	Src     string `yaml:"src"`
	SrcDark string `yaml:"src_dark,omitempty"`
}

// NavbarItemType selects how a navbar item finds its target.
type NavbarItemType string

const (
	NavbarItemLink       NavbarItemType = "link"
	NavbarItemDoc        NavbarItemType = "doc"
	NavbarItemDocSidebar NavbarItemType = "docSidebar"
)

// NavbarItem is one entry of the navbar, in display order.
type NavbarItem struct {
	Type      NavbarItemType `yaml:"type,omitempty"`
	Label     string         `yaml:"label"`
	Position  Position       `yaml:"position,omitempty"`
	SidebarID string         `yaml:"sidebar_id,omitempty"`
	DocID     string         `yaml:"doc_id,omitempty"`
	To        string         `yaml:"to,omitempty"`
	Href      string         `yaml:"href,omitempty"`
}

// Position is the side of the navbar an item is rendered on.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// FooterConfig is the page footer.
type FooterConfig struct {
	Style     string          `yaml:"style,omitempty"`
	Links     []FooterSection `yaml:"links,omitempty"`
	Copyright string          `yaml:"copyright,omitempty"`
}

// CopyrightText expands the {year} placeholder.
func (f FooterConfig) CopyrightText(now time.Time) string {
	return strings.ReplaceAll(f.Copyright, "{year}", strconv.Itoa(now.Year()))
}

// FooterSection is a titled column of footer links.
type FooterSection struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
}

// FooterLink points at an internal route (To) or an external URL (Href).
type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

// PrismConfig selects code highlighting themes.
type PrismConfig struct {
	Theme     string `yaml:"theme,omitempty"`
	DarkTheme string `yaml:"dark_theme,omitempty"`
}

// LoggingConfig controls the CLI log output when no flag overrides it.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// ReportingConfig wires run outputs to external sinks. Every sink is optional.
type ReportingConfig struct {
	HistoryDB   string `yaml:"history_db,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`

	// Retries of a failed report publish, after the first attempt.
	PublishRetries      int              `yaml:"publish_retries,omitempty"`
	PublishBackoff      RetryBackoffMode `yaml:"publish_backoff,omitempty"`
	PublishInitialDelay string           `yaml:"publish_initial_delay,omitempty"` // e.g. "1s"
	PublishMaxDelay     string           `yaml:"publish_max_delay,omitempty"`     // e.g. "30s"
}
