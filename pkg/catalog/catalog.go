package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Style is a visual option users select by image. PromptGroup is what the
// album generator receives; users never see it.
type Style struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	ImageURL    string `yaml:"imageUrl" json:"imageUrl"`
	PromptGroup string `yaml:"promptGroup" json:"backendPromptGroup"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// ServiceCategory is a photo type offered on the service request form.
type ServiceCategory struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
}

type document struct {
	Styles     []Style           `yaml:"styles"`
	Categories []ServiceCategory `yaml:"categories"`
}

// Catalog is an immutable set of styles and service categories.
type Catalog struct {
	styles     []Style
	categories []ServiceCategory
	styleIdx   map[string]int
	catIdx     map[string]int
}

// Load walks fsys and merges every YAML file into a catalog. Duplicate ids
// across files are rejected.
func Load(fsys fs.FS) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("catalog: filesystem is nil")
	}
	cat := &Catalog{
		styleIdx: make(map[string]int),
		catIdx:   make(map[string]int),
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		return cat.merge(doc, path)
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (c *Catalog) merge(doc document, path string) error {
	for _, style := range doc.Styles {
		style.ID = strings.TrimSpace(style.ID)
		if style.ID == "" {
			return fmt.Errorf("catalog: file %s defines a style without id", path)
		}
		if style.PromptGroup == "" {
			return fmt.Errorf("catalog: style %q (file %s) has no prompt group", style.ID, path)
		}
		if _, exists := c.styleIdx[style.ID]; exists {
			return fmt.Errorf("catalog: duplicate style %q (file %s)", style.ID, path)
		}
		c.styleIdx[style.ID] = len(c.styles)
		c.styles = append(c.styles, style)
	}
	for _, category := range doc.Categories {
		category.ID = strings.TrimSpace(category.ID)
		if category.ID == "" {
			return fmt.Errorf("catalog: file %s defines a category without id", path)
		}
		if _, exists := c.catIdx[category.ID]; exists {
			return fmt.Errorf("catalog: duplicate category %q (file %s)", category.ID, path)
		}
		c.catIdx[category.ID] = len(c.categories)
		c.categories = append(c.categories, category)
	}
	return nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog bundled with the module.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(EmbeddedFS())
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for init-time wiring; it panics on a broken bundle.
func MustDefault() *Catalog {
	cat, err := Default()
	if err != nil {
		panic(err)
	}
	return cat
}

// Styles returns every style in declaration order.
func (c *Catalog) Styles() []Style {
	return append([]Style(nil), c.styles...)
}

// Style looks up a style by id.
func (c *Catalog) Style(id string) (Style, bool) {
	idx, ok := c.styleIdx[id]
	if !ok {
		return Style{}, false
	}
	return c.styles[idx], true
}

// StylesByCategory returns the styles tagged with category.
func (c *Catalog) StylesByCategory(category string) []Style {
	var out []Style
	for _, style := range c.styles {
		if style.Category == category {
			out = append(out, style)
		}
	}
	return out
}

// StyleCategories returns the distinct style categories in first-seen order.
func (c *Catalog) StyleCategories() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, style := range c.styles {
		if style.Category == "" {
			continue
		}
		if _, ok := seen[style.Category]; ok {
			continue
		}
		seen[style.Category] = struct{}{}
		out = append(out, style.Category)
	}
	return out
}

// ResolveStyles maps ids to styles, skipping unknown ids.
func (c *Catalog) ResolveStyles(ids []string) []Style {
	out := make([]Style, 0, len(ids))
	for _, id := range ids {
		if style, ok := c.Style(id); ok {
			out = append(out, style)
		}
	}
	return out
}

// PromptGroups returns the prompt group of each known style id, in order.
func (c *Catalog) PromptGroups(ids []string) []string {
	styles := c.ResolveStyles(ids)
	if len(styles) == 0 {
		return nil
	}
	out := make([]string, 0, len(styles))
	for _, style := range styles {
		out = append(out, style.PromptGroup)
	}
	return out
}

// ServiceCategories returns every service category in declaration order.
func (c *Catalog) ServiceCategories() []ServiceCategory {
	return append([]ServiceCategory(nil), c.categories...)
}

// ServiceCategory looks up a service category by id.
func (c *Catalog) ServiceCategory(id string) (ServiceCategory, bool) {
	idx, ok := c.catIdx[id]
	if !ok {
		return ServiceCategory{}, false
	}
	return c.categories[idx], true
}

// CategoryLabels maps ids to labels, skipping unknown ids.
func (c *Catalog) CategoryLabels(ids []string) []string {
	var out []string
	for _, id := range ids {
		if category, ok := c.ServiceCategory(id); ok {
			out = append(out, category.Label)
		}
	}
	return out
}
