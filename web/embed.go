package web

import "embed"

// TemplatesFS holds the server rendered pages.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
