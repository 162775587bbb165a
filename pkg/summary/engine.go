package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/flosch/pongo2/v6"
)

const templateExt = ".tpl"

// Engine renders named pongo2 templates from an fs.FS, caching parsed
// templates.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var filtersOnce sync.Once

// NewEngine builds an engine over templates. Nil uses the embedded set.
func NewEngine(templates fs.FS) (*Engine, error) {
	if templates == nil {
		templates = EmbeddedTemplates()
	}
	filtersOnce.Do(registerFilters)

	return &Engine{
		set:       pongo2.NewSet("memora", pongo2.NewFSLoader(templates)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the template called name (extension optional) with data.
// Structs are converted through their JSON form so templates address fields
// by their JSON names.
func (e *Engine) Render(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("summary: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, templateExt) {
		path += templateExt
	}

	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("summary: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("summary: execute %q: %w", path, err)
	}
	return buf.String(), nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("summary: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return normalize(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return pongo2.Context(out), nil
	}
}

// normalize round-trips non-primitive values through JSON so nested structs
// expose their JSON field names to templates.
func normalize(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		switch value.(type) {
		case nil, string, bool, int, int64, float64:
			out[key] = value
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		out[key] = decoded
	}
	return out, nil
}

func registerFilters() {
	if !pongo2.FilterExists("filesize") {
		_ = pongo2.RegisterFilter("filesize", filterFileSize)
	}
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterFileSize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return pongo2.AsValue(""), nil
	}
	size := in.Integer()
	if size < 0 {
		size = 0
	}
	return pongo2.AsValue(humanize.IBytes(uint64(size))), nil
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
