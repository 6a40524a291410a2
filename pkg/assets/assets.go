// Package assets embeds the default scenario configurations.
package assets

import _ "embed"

//go:embed configurations.yaml
var Configurations []byte
