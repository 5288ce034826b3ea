package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

// Validate checks the configuration and returns the first violation as a
// fatal config ClassifiedError whose "field" context names the offending field.
func Validate(cfg *SiteConfig) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration sections.
type configurationValidator struct {
	config *SiteConfig
}

func newConfigurationValidator(config *SiteConfig) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	steps := []func() error{
		cv.validateSite,
		cv.validatePolicies,
		cv.validateI18n,
		cv.validateMarkdown,
		cv.validateDocs,
		cv.validateStylesheets,
		cv.validateNavbar,
		cv.validateFooter,
		cv.validateReporting,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func fieldError(field, message string, value any) error {
	b := ferrors.ConfigError(message).WithField(field)
	if value != nil {
		b = b.WithContext("value", value)
	}
	return b.Build()
}

func (cv *configurationValidator) validateSite() error {
	c := cv.config
	if strings.TrimSpace(c.Title) == "" {
		return fieldError("title", "title cannot be empty", nil)
	}

	if c.URL == "" {
		return fieldError("url", "url cannot be empty", nil)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fieldError("url", "url must be an absolute http(s) URL", c.URL)
	}
	if u.Path != "" && u.Path != "/" {
		return fieldError("url", "url must not contain a path, use base_url instead", c.URL)
	}

	if !ValidBaseURL(c.BaseURL) {
		return fieldError("base_url", "base_url must start and end with '/'", c.BaseURL)
	}
	return nil
}

// ValidBaseURL reports whether p starts and ends with a slash. "/" is valid.
func ValidBaseURL(p string) bool {
	return strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/")
}

func (cv *configurationValidator) validatePolicies() error {
	c := cv.config
	s, err := strictnessNormalizer.NormalizeWithError(string(c.OnBrokenLinks))
	if err != nil {
		return fieldError("on_broken_links", err.Error(), string(c.OnBrokenLinks))
	}
	c.OnBrokenLinks = s

	s, err = strictnessNormalizer.NormalizeWithError(string(c.OnBrokenMarkdownLinks))
	if err != nil {
		return fieldError("on_broken_markdown_links", err.Error(), string(c.OnBrokenMarkdownLinks))
	}
	c.OnBrokenMarkdownLinks = s
	return nil
}

func (cv *configurationValidator) validateI18n() error {
	i := cv.config.I18n
	if len(i.Locales) == 0 {
		return fieldError("i18n.locales", "at least one locale must be configured", nil)
	}

	seen := make(map[string]struct{}, len(i.Locales))
	for idx, loc := range i.Locales {
		field := fmt.Sprintf("i18n.locales[%d]", idx)
		if _, err := language.Parse(loc); err != nil {
			return fieldError(field, "locale is not a valid BCP 47 language tag", loc)
		}
		if _, dup := seen[loc]; dup {
			return fieldError(field, "duplicate locale", loc)
		}
		seen[loc] = struct{}{}
	}

	if i.DefaultLocale == "" {
		return fieldError("i18n.default_locale", "default locale cannot be empty", nil)
	}
	if _, ok := seen[i.DefaultLocale]; !ok {
		return fieldError("i18n.default_locale", "default locale is not listed in locales", i.DefaultLocale)
	}
	return nil
}

func (cv *configurationValidator) validateMarkdown() error {
	c := cv.config
	themes := make(map[string]struct{}, len(c.Themes))
	for idx, theme := range c.Themes {
		if !IsKnownTheme(theme) {
			return fieldError(fmt.Sprintf("themes[%d]", idx), "unknown theme package", theme)
		}
		themes[theme] = struct{}{}
	}

	for idx, name := range c.Markdown.Extensions {
		if _, ok := LookupExtension(name); !ok {
			return fieldError(fmt.Sprintf("markdown.extensions[%d]", idx),
				fmt.Sprintf("unknown markdown extension, valid options: %s", strings.Join(KnownExtensions(), ", ")), name)
		}
	}

	for _, name := range c.Markdown.EnabledExtensions() {
		ext, _ := LookupExtension(name)
		if ext.Theme == "" {
			continue
		}
		if _, ok := themes[ext.Theme]; !ok {
			return fieldError("themes", fmt.Sprintf("markdown extension %q requires theme %q", name, ext.Theme), nil)
		}
	}
	return nil
}

func (cv *configurationValidator) validateDocs() error {
	d := cv.config.Docs
	if strings.Contains(d.RouteBasePath, "://") {
		return fieldError("docs.route_base_path", "route_base_path must be a path, not a URL", d.RouteBasePath)
	}
	if d.EditURL != "" && !isAbsoluteURL(d.EditURL) {
		return fieldError("docs.edit_url", "edit_url must be an absolute http(s) URL", d.EditURL)
	}
	for i, dir := range cv.config.StaticDirectories {
		if strings.TrimSpace(dir) == "" || strings.Contains(dir, "://") {
			return fieldError(fmt.Sprintf("static_directories[%d]", i), "static directory must be a path", dir)
		}
	}
	return nil
}

func (cv *configurationValidator) validateStylesheets() error {
	for idx, s := range cv.config.Stylesheets {
		prefix := fmt.Sprintf("stylesheets[%d]", idx)
		if !isAbsoluteURL(s.Href) {
			return fieldError(prefix+".href", "stylesheet href must be an absolute http(s) URL", s.Href)
		}
		if s.Integrity != "" {
			if err := validateIntegrity(s.Integrity); err != nil {
				return fieldError(prefix+".integrity", err.Error(), s.Integrity)
			}
		}
		switch s.CrossOrigin {
		case "", "anonymous", "use-credentials":
		default:
			return fieldError(prefix+".crossorigin", "crossorigin must be anonymous or use-credentials", s.CrossOrigin)
		}
	}
	return nil
}

var integrityDigestSizes = map[string]int{
	"sha256": 32,
	"sha384": 48,
	"sha512": 64,
}

// validateIntegrity checks a subresource integrity attribute: one or more
// whitespace separated "<alg>-<base64 digest>" tokens.
func validateIntegrity(value string) error {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return fmt.Errorf("integrity is empty")
	}
	for _, tok := range tokens {
		// Options after '?' are reserved by the SRI grammar and ignored.
		tok, _, _ = strings.Cut(tok, "?")
		alg, digest, ok := strings.Cut(tok, "-")
		if !ok {
			return fmt.Errorf("integrity token %q must have the form <alg>-<digest>", tok)
		}
		size, known := integrityDigestSizes[alg]
		if !known {
			return fmt.Errorf("unsupported integrity algorithm %q", alg)
		}
		raw, err := base64.StdEncoding.DecodeString(digest)
		if err != nil {
			return fmt.Errorf("integrity digest is not valid base64")
		}
		if len(raw) != size {
			return fmt.Errorf("%s digest must be %d bytes, got %d", alg, size, len(raw))
		}
	}
	return nil
}

func (cv *configurationValidator) validateNavbar() error {
	nb := cv.config.Navbar
	if nb.Logo != nil && nb.Logo.Src == "" {
		return fieldError("navbar.logo.src", "logo src cannot be empty", nil)
	}

	for idx, item := range nb.Items {
		prefix := fmt.Sprintf("navbar.items[%d]", idx)
		if strings.TrimSpace(item.Label) == "" {
			return fieldError(prefix+".label", "navbar item label cannot be empty", nil)
		}
		if _, err := positionNormalizer.NormalizeWithError(string(item.Position)); err != nil {
			return fieldError(prefix+".position", err.Error(), string(item.Position))
		}

		switch item.Type {
		case NavbarItemDocSidebar:
			if item.SidebarID == "" {
				return fieldError(prefix+".sidebar_id", "docSidebar item requires sidebar_id", nil)
			}
		case NavbarItemDoc:
			if item.DocID == "" {
				return fieldError(prefix+".doc_id", "doc item requires doc_id", nil)
			}
		case NavbarItemLink:
			if err := validateTarget(prefix, item.To, item.Href); err != nil {
				return err
			}
		default:
			return fieldError(prefix+".type", "unknown navbar item type", string(item.Type))
		}
	}
	return nil
}

func (cv *configurationValidator) validateFooter() error {
	f := cv.config.Footer
	switch f.Style {
	case "dark", "light":
	default:
		return fieldError("footer.style", "footer style must be dark or light", f.Style)
	}

	for sIdx, section := range f.Links {
		prefix := fmt.Sprintf("footer.links[%d]", sIdx)
		if strings.TrimSpace(section.Title) == "" {
			return fieldError(prefix+".title", "footer section title cannot be empty", nil)
		}
		for iIdx, link := range section.Items {
			itemPrefix := fmt.Sprintf("%s.items[%d]", prefix, iIdx)
			if strings.TrimSpace(link.Label) == "" {
				return fieldError(itemPrefix+".label", "footer link label cannot be empty", nil)
			}
			if err := validateTarget(itemPrefix, link.To, link.Href); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateTarget requires exactly one of an internal route or an external URL.
func validateTarget(prefix, to, href string) error {
	switch {
	case to == "" && href == "":
		return fieldError(prefix, "link needs either to or href", nil)
	case to != "" && href != "":
		return fieldError(prefix, "link cannot set both to and href", nil)
	case to != "" && !strings.HasPrefix(to, "/"):
		return fieldError(prefix+".to", "internal route must start with '/'", to)
	case href != "" && !isAbsoluteURL(href):
		return fieldError(prefix+".href", "href must be an absolute http(s) URL", href)
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (cv *configurationValidator) validateReporting() error {
	r := &cv.config.Reporting
	if r.PublishRetries < 0 {
		return fieldError("reporting.publish_retries", "publish_retries cannot be negative", r.PublishRetries)
	}
	if r.PublishBackoff != "" {
		mode, err := retryBackoffNormalizer.NormalizeWithError(string(r.PublishBackoff))
		if err != nil {
			return fieldError("reporting.publish_backoff", err.Error(), string(r.PublishBackoff))
		}
		r.PublishBackoff = mode
	}
	delays := []struct{ field, raw string }{
		{"reporting.publish_initial_delay", r.PublishInitialDelay},
		{"reporting.publish_max_delay", r.PublishMaxDelay},
	}
	for _, d := range delays {
		if d.raw == "" {
			continue
		}
		if v, err := time.ParseDuration(d.raw); err != nil || v <= 0 {
			return fieldError(d.field, "delay must be a positive duration such as 1s", d.raw)
		}
	}
	return nil
}
