// Package catalog loads the image styles and service categories offered by
// the intake flows. The default catalog is bundled as YAML; Load accepts any
// fs.FS so deployments can ship their own.
package catalog
