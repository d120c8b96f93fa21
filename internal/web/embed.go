// ABOUTME: Embeds HTML templates and help docs into the binary
// ABOUTME: Provides templateFS and helpDocsFS for runtime loading

package web

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed docs/*.md
var helpDocsFS embed.FS
