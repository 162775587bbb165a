package catalog

import (
	"embed"
	"io/fs"
)

//go:embed data/*.yaml
var embeddedCatalog embed.FS

// EmbeddedFS returns the bundled catalog files. Callers may pass this
// filesystem to Load alongside their own overrides.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "data")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
