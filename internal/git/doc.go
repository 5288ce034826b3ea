// Package git reads files from a committed revision of the site repository.
//
// It lets a run validate the sidebars and content exactly as they were at a
// tag, branch or commit, without touching the working tree.
package git
