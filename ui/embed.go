package ui

import "embed"

//go:embed templates static about.md
var embeddedFiles embed.FS
