package config

// Defaults applied before validation.
const (
	DefaultDocsPath          = "docs"
	DefaultRouteBasePath     = "/"
	DefaultSidebarPath       = "sidebars.yaml"
	DefaultVersionsPath      = "versions.yaml"
	DefaultVersionedSidebars = "versioned_sidebars"
	DefaultVersionedDocs     = "versioned_docs"
	DefaultLocale            = "en"
	DefaultStylesheetType    = "text/css"
	DefaultFooterStyle       = "dark"
	DefaultNATSSubject       = "cubedocs.runs"
	DefaultStaticDirectory   = "static"
)

func applyDefaults(cfg *SiteConfig) {
	if cfg.OnBrokenLinks == "" {
		cfg.OnBrokenLinks = StrictnessThrow
	}
	if cfg.OnBrokenMarkdownLinks == "" {
		cfg.OnBrokenMarkdownLinks = StrictnessWarn
	}

	if cfg.I18n.DefaultLocale == "" && len(cfg.I18n.Locales) == 0 {
		cfg.I18n.DefaultLocale = DefaultLocale
		cfg.I18n.Locales = []string{DefaultLocale}
	}

	d := &cfg.Docs
	if d.Path == "" {
		d.Path = DefaultDocsPath
	}
	if d.RouteBasePath == "" {
		d.RouteBasePath = DefaultRouteBasePath
	}
	if d.SidebarPath == "" {
		d.SidebarPath = DefaultSidebarPath
	}
	if d.VersionsPath == "" {
		d.VersionsPath = DefaultVersionsPath
	}
	if d.VersionedSidebars == "" {
		d.VersionedSidebars = DefaultVersionedSidebars
	}
	if d.VersionedDocs == "" {
		d.VersionedDocs = DefaultVersionedDocs
	}

	if len(cfg.StaticDirectories) == 0 {
		cfg.StaticDirectories = []string{DefaultStaticDirectory}
	}

	for i := range cfg.Stylesheets {
		if cfg.Stylesheets[i].Type == "" {
			cfg.Stylesheets[i].Type = DefaultStylesheetType
		}
	}

	for i := range cfg.Navbar.Items {
		item := &cfg.Navbar.Items[i]
		// Unknown values are left as written so validation can name them.
		if t, err := navbarItemTypeNormalizer.NormalizeWithError(string(item.Type)); err == nil {
			item.Type = t
		}
		if p, err := positionNormalizer.NormalizeWithError(string(item.Position)); err == nil {
			item.Position = p
		}
	}

	if cfg.Footer.Style == "" {
		cfg.Footer.Style = DefaultFooterStyle
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	if cfg.Reporting.NATSURL != "" && cfg.Reporting.NATSSubject == "" {
		cfg.Reporting.NATSSubject = DefaultNATSSubject
	}
}

// Example returns the Cube AI site configuration. It is what `cubedocs init`
// writes and matches site/site.yaml.
func Example() *SiteConfig {
	cfg := &SiteConfig{
		Title:                 "Cube AI",
		Tagline:               "Framework for building GPT-based AI applications using confidential computing",
		Favicon:               "img/logo.png",
		URL:                   "https://docs.cube.ultraviolet.rs",
		BaseURL:               "/",
		OrganizationName:      "ultravioletrs",
		ProjectName:           "cube-docs",
		OnBrokenLinks:         StrictnessThrow,
		OnBrokenMarkdownLinks: StrictnessWarn,
		I18n: I18nConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Markdown: MarkdownConfig{
			Mermaid:    true,
			Extensions: []string{ExtensionMath},
		},
		Themes: []string{ThemeMermaid},
		Docs: DocsConfig{
			Path:          DefaultDocsPath,
			RouteBasePath: "/",
			SidebarPath:   DefaultSidebarPath,
			EditURL:       "https://github.com/ultravioletrs/cube-docs/tree/main/",
		},
		Theme: ThemeConfig{CustomCSS: "./src/css/custom.css"},
		Stylesheets: []Stylesheet{
			{
				Href:        "https://cdn.jsdelivr.net/npm/katex@0.16.0/dist/katex.min.css",
				Type:        DefaultStylesheetType,
				Integrity:   "sha384-KI1CcbBaGdBrw9FjD0oaWZ8i3tYtU4WnFGOwJKhRZ7QkKQ+0r8zAaepK3QKX5F2y",
				CrossOrigin: "anonymous",
			},
		},
		Image: "img/docusaurus-social-card.jpg",
		Navbar: NavbarConfig{
			Logo: &Logo{
				Alt:     "Cube AI Logo",
				Src:     "img/logos/altLogo.svg",
				SrcDark: "img/logos/sidebarLogo.svg",
			},
			Items: []NavbarItem{
				{Type: NavbarItemDocSidebar, SidebarID: "tutorialSidebar", Position: PositionLeft, Label: "Docs"},
				{Type: NavbarItemLink, Href: "https://www.ultraviolet.rs/blog/?category=cube+ai", Label: "Blog", Position: PositionLeft},
				{Type: NavbarItemLink, Href: "https://github.com/ultravioletrs/cube", Label: "GitHub", Position: PositionRight},
			},
		},
		Footer: FooterConfig{
			Style: DefaultFooterStyle,
			Links: []FooterSection{
				{Title: "Docs", Items: []FooterLink{{Label: "Docs", To: "/"}}},
				{Title: "Community", Items: []FooterLink{{Label: "X", Href: "https://x.com/ultravioletrs"}}},
				{Title: "More", Items: []FooterLink{{Label: "GitHub", Href: "https://github.com/ultravioletrs/cube"}}},
			},
			Copyright: "Copyright © {year} Cube AI, Inc. Built with Docusaurus.",
		},
		Prism: PrismConfig{Theme: "github", DarkTheme: "dracula"},
	}
	applyDefaults(cfg)
	return cfg
}
