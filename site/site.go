// Package site embeds the Cube AI documentation site descriptors.
package site

import _ "embed"

// ConfigYAML is the site configuration descriptor.
//
//go:embed site.yaml
var ConfigYAML []byte

// SidebarsYAML is the current sidebar structure descriptor.
//
//go:embed sidebars.yaml
var SidebarsYAML []byte
