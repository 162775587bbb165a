package summary

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// EmbeddedTemplates exposes the built-in review templates.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return sub
}
