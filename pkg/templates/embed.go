package templates

import "embed"

// The shipped template trees, one directory per pipeline step tag.
//
//go:embed all:assets
var assets embed.FS
