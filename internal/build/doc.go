// Package build runs a complete validation pass over the site descriptors.
//
// A run loads the site configuration, selects the sidebars and content for
// the requested version or git revision, validates every sidebar reference,
// renders the navigation, checks navigation and prose links, and produces a
// manifest. Every execution path (validate, nav, links, watch) goes through
// Runner so metrics, history and reports are recorded the same way.
package build
