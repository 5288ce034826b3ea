// Package linkcheck verifies internal links of the site.
//
// Two scopes are checked under separate policies. Navigation links (navbar
// and footer targets) fall under on_broken_links, which halts the run by
// default. Prose links inside documents fall under on_broken_markdown_links,
// which only warns by default. External URLs are never fetched.
package linkcheck
