// Package nav turns validated sidebar trees into the navigation the site
// renders: labels, routes, positions, breadcrumbs and page order.
//
// Rendering is a single top-down pass. Each node keeps the position it was
// declared at among its siblings, so the same sidebar always renders the
// same navigation and two sidebars with the same entries in a different
// order differ only in order.
package nav
