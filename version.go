package storefront

import _ "embed"

// Version is the release of the storefront module.
//
//go:embed VERSION
var Version string
