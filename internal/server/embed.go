package server

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*.css
var StaticFS embed.FS
