package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

//go:embed templates
var templateFS embed.FS

// FS returns an http.FileSystem for the embedded stylesheet, script and logo.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Should never happen with a valid embed pattern.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
