package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/site"
)

const minimalConfig = "title: Test Docs\n" +
	"url: https://docs.example.com\n" +
	"base_url: /\n"

func TestParseSiteDescriptorMatchesExample(t *testing.T) {
	cfg, err := Parse(site.ConfigYAML)
	require.NoError(t, err)
	assert.Equal(t, Example(), cfg)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, StrictnessThrow, cfg.OnBrokenLinks)
	assert.Equal(t, StrictnessWarn, cfg.OnBrokenMarkdownLinks)
	assert.Equal(t, "en", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"en"}, cfg.I18n.Locales)
	assert.Equal(t, DefaultDocsPath, cfg.Docs.Path)
	assert.Equal(t, DefaultRouteBasePath, cfg.Docs.RouteBasePath)
	assert.Equal(t, DefaultSidebarPath, cfg.Docs.SidebarPath)
	assert.Equal(t, DefaultVersionsPath, cfg.Docs.VersionsPath)
	assert.Equal(t, DefaultVersionedSidebars, cfg.Docs.VersionedSidebars)
	assert.Equal(t, DefaultVersionedDocs, cfg.Docs.VersionedDocs)
	assert.Equal(t, DefaultFooterStyle, cfg.Footer.Style)
	assert.Equal(t, []string{DefaultStaticDirectory}, cfg.StaticDirectories)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestParseNormalizesEnums(t *testing.T) {
	content := minimalConfig +
		"on_broken_links: WARN\n" +
		"navbar:\n" +
		"  items:\n" +
		"    - type: DocSidebar\n" +
		"      sidebar_id: docs\n" +
		"      label: Docs\n" +
		"      position: Right\n" +
		"stylesheets:\n" +
		"  - href: https://cdn.example.com/a.css\n" +
		"reporting:\n" +
		"  nats_url: nats://localhost:4222\n"

	cfg, err := Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, StrictnessWarn, cfg.OnBrokenLinks)
	assert.Equal(t, NavbarItemDocSidebar, cfg.Navbar.Items[0].Type)
	assert.Equal(t, PositionRight, cfg.Navbar.Items[0].Position)
	assert.Equal(t, DefaultStylesheetType, cfg.Stylesheets[0].Type)
	assert.Equal(t, DefaultNATSSubject, cfg.Reporting.NATSSubject)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(minimalConfig + "baseUrl: /docs/\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file is empty")
}

func TestValidateReportsOffendingField(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing title", "url: https://x.io\nbase_url: /\n", "title"},
		{"relative url", "title: T\nurl: docs.example.com\nbase_url: /\n", "url"},
		{"url with path", "title: T\nurl: https://x.io/docs\nbase_url: /\n", "url"},
		{"base url without leading slash", "title: T\nurl: https://x.io\nbase_url: docs/\n", "base_url"},
		{"base url without trailing slash", "title: T\nurl: https://x.io\nbase_url: /docs\n", "base_url"},
		{"empty base url", "title: T\nurl: https://x.io\nbase_url: ''\n", "base_url"},
		{"bad strictness", minimalConfig + "on_broken_links: explode\n", "on_broken_links"},
		{"bad markdown strictness", minimalConfig + "on_broken_markdown_links: maybe\n", "on_broken_markdown_links"},
		{"default locale not listed", minimalConfig + "i18n:\n  default_locale: fr\n  locales: [en]\n", "i18n.default_locale"},
		{"no locales", minimalConfig + "i18n:\n  default_locale: en\n  locales: []\n", "i18n.locales"},
		{"invalid locale tag", minimalConfig + "i18n:\n  default_locale: en\n  locales: [en, 'not a tag']\n", "i18n.locales[1]"},
		{"duplicate locale", minimalConfig + "i18n:\n  default_locale: en\n  locales: [en, en]\n", "i18n.locales[1]"},
		{"unknown extension", minimalConfig + "markdown:\n  extensions: [math, emoji]\n", "markdown.extensions[1]"},
		{"mermaid without theme", minimalConfig + "markdown:\n  mermaid: true\n", "themes"},
		{"unknown theme", minimalConfig + "themes: ['@acme/theme']\n", "themes[0]"},
		{"route base is url", minimalConfig + "docs:\n  route_base_path: https://x.io/\n", "docs.route_base_path"},
		{"relative edit url", minimalConfig + "docs:\n  edit_url: github.com/x\n", "docs.edit_url"},
		{"relative stylesheet", minimalConfig + "stylesheets:\n  - href: /katex.css\n", "stylesheets[0].href"},
		{"short integrity digest", minimalConfig + "stylesheets:\n  - href: https://x.io/a.css\n    integrity: sha384-AAAA\n", "stylesheets[0].integrity"},
		{"unknown integrity alg", minimalConfig + "stylesheets:\n  - href: https://x.io/a.css\n    integrity: md5-AAAA\n", "stylesheets[0].integrity"},
		{"bad crossorigin", minimalConfig + "stylesheets:\n  - href: https://x.io/a.css\n    crossorigin: everyone\n", "stylesheets[0].crossorigin"},
		{"navbar label", minimalConfig + "navbar:\n  items:\n    - href: https://x.io\n", "navbar.items[0].label"},
		{"navbar position", minimalConfig + "navbar:\n  items:\n    - href: https://x.io\n      label: X\n      position: middle\n", "navbar.items[0].position"},
		{"navbar type", minimalConfig + "navbar:\n  items:\n    - type: dropdown\n      label: X\n", "navbar.items[0].type"},
		{"docSidebar without id", minimalConfig + "navbar:\n  items:\n    - type: docSidebar\n      label: Docs\n", "navbar.items[0].sidebar_id"},
		{"doc without id", minimalConfig + "navbar:\n  items:\n    - type: doc\n      label: Intro\n", "navbar.items[0].doc_id"},
		{"link without target", minimalConfig + "navbar:\n  items:\n    - label: X\n", "navbar.items[0]"},
		{"link with both targets", minimalConfig + "navbar:\n  items:\n    - label: X\n      to: /a\n      href: https://x.io\n", "navbar.items[0]"},
		{"relative to", minimalConfig + "footer:\n  links:\n    - title: Docs\n      items:\n        - label: Docs\n          to: intro\n", "footer.links[0].items[0].to"},
		{"footer style", minimalConfig + "footer:\n  style: neon\n", "footer.style"},
		{"footer title", minimalConfig + "footer:\n  links:\n    - items: []\n", "footer.links[0].title"},
		{"logo src", minimalConfig + "navbar:\n  logo:\n    alt: Logo\n", "navbar.logo.src"},
		{"static directory url", minimalConfig + "static_directories: [https://cdn.example.com]\n", "static_directories[0]"},
		{"empty static directory", minimalConfig + "static_directories: ['']\n", "static_directories[0]"},
		{"negative publish retries", minimalConfig + "reporting:\n  publish_retries: -1\n", "reporting.publish_retries"},
		{"unknown backoff", minimalConfig + "reporting:\n  publish_backoff: random\n", "reporting.publish_backoff"},
		{"bad initial delay", minimalConfig + "reporting:\n  publish_initial_delay: soon\n", "reporting.publish_initial_delay"},
		{"zero max delay", minimalConfig + "reporting:\n  publish_max_delay: 0s\n", "reporting.publish_max_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok, "expected classified error, got %v", err)
			assert.Equal(t, ferrors.CategoryConfig, classified.Category())
			assert.True(t, classified.IsFatal())
			assert.Equal(t, tt.field, classified.Field())
		})
	}
}

func TestValidBaseURL(t *testing.T) {
	for _, ok := range []string{"/", "/docs/", "/a/b/"} {
		assert.True(t, ValidBaseURL(ok), ok)
	}
	for _, bad := range []string{"", "docs/", "/docs", "docs"} {
		assert.False(t, ValidBaseURL(bad), bad)
	}
}

func TestValidateIntegrity(t *testing.T) {
	require.NoError(t, validateIntegrity("sha384-KI1CcbBaGdBrw9FjD0oaWZ8i3tYtU4WnFGOwJKhRZ7QkKQ+0r8zAaepK3QKX5F2y"))
	require.NoError(t, validateIntegrity("sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU= sha384-KI1CcbBaGdBrw9FjD0oaWZ8i3tYtU4WnFGOwJKhRZ7QkKQ+0r8zAaepK3QKX5F2y"))
	require.Error(t, validateIntegrity("sha384"))
	require.Error(t, validateIntegrity("sha256-not*base64"))
}

func TestLoadExpandsEnvironmentFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { _ = os.Unsetenv("CUBEDOCS_TEST_SITE_URL") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CUBEDOCS_TEST_SITE_URL=https://staging.example.com\n"), 0o600))
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Staging\nurl: ${CUBEDOCS_TEST_SITE_URL}\nbase_url: /\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.URL)
}

func TestLoadProcessEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CUBEDOCS_TEST_TITLE", "From Process")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CUBEDOCS_TEST_TITLE=From File\n"), 0o600))
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: ${CUBEDOCS_TEST_TITLE}\nurl: https://x.io\nbase_url: /\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From Process", cfg.Title)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestInitWritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "site.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Example(), cfg)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, Init(path, true))
}

func TestCopyrightText(t *testing.T) {
	f := FooterConfig{Copyright: "Copyright © {year} Cube AI, Inc."}
	assert.Equal(t, "Copyright © 2026 Cube AI, Inc.", f.CopyrightText(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestEnabledExtensions(t *testing.T) {
	m := MarkdownConfig{Mermaid: true, Extensions: []string{ExtensionMath, ExtensionMermaid, ExtensionMath}}
	assert.Equal(t, []string{ExtensionMath, ExtensionMermaid}, m.EnabledExtensions())

	ext, ok := LookupExtension(ExtensionMath)
	require.True(t, ok)
	assert.Equal(t, []string{"remark-math"}, ext.RemarkPlugins)
	assert.Equal(t, []string{"rehype-katex"}, ext.RehypePlugins)
}

func TestStrictnessIsFatal(t *testing.T) {
	assert.True(t, StrictnessThrow.IsFatal())
	assert.False(t, StrictnessWarn.IsFatal())
	assert.False(t, StrictnessLog.IsFatal())
	assert.False(t, StrictnessIgnore.IsFatal())
}

func TestStrictnessLogLevel(t *testing.T) {
	level, ok := StrictnessWarn.LogLevel()
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = StrictnessLog.LogLevel()
	assert.True(t, ok)
	assert.Equal(t, slog.LevelInfo, level)

	_, ok = StrictnessIgnore.LogLevel()
	assert.False(t, ok)
}

func TestParseReportingRetry(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig + "reporting:\n  publish_retries: 3\n  publish_backoff: EXPONENTIAL\n  publish_initial_delay: 250ms\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Reporting.PublishRetries)
	assert.Equal(t, RetryBackoffExponential, cfg.Reporting.PublishBackoff)
	assert.Equal(t, "250ms", cfg.Reporting.PublishInitialDelay)
}
