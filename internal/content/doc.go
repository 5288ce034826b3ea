// Package content indexes the documentation content store.
//
// A document's ID is its path below the docs directory without the .md/.mdx
// extension. Numeric ordering prefixes such as "01-" are stripped from every
// path segment, and a front matter id replaces the file name segment. Files
// whose name starts with an underscore are partials and are not documents.
package content
