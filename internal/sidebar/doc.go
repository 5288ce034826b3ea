// Package sidebar loads the ordered navigation trees of the documentation site.
//
// A sidebars file maps sidebar names to lists of entries. An entry is a bare
// document ID, a typed object (doc, category, link) or the category
// shorthand "Label: [items]". Declaration order is kept everywhere: the
// order of sidebars in the file and the order of siblings within each list
// are the order the navigation renders in. Nothing is sorted, deduplicated
// or inferred from the file system.
package sidebar
