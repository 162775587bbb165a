package album

import (
	"strings"

	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// Name is the flow name carried by album submissions.
const Name = gateway.FlowAlbum

// Step messages not derived from bounds.
const (
	MessageTitleRequired = "Please give your album a title"
	MessageInvalidStyles = "Some selected styles are invalid"
)

// Flow is a running album flow.
type Flow = wizard.Flow[Form]

// Steps returns the album step table for cfg. Selected styles must exist in
// cat; nil uses the embedded catalog.
func Steps(cfg Config, cat *catalog.Catalog) []wizard.Step[Form] {
	if cat == nil {
		cat = catalog.MustDefault()
	}
	prior := []wizard.Step[Form]{
		{
			Number:      1,
			Title:       "Album Details",
			Description: "Name your album",
			Validate: func(f *Form) validation.Result {
				return validation.RequireText(f.Title, MessageTitleRequired)
			},
		},
		{
			Number:      2,
			Title:       "Choose Style",
			Description: "Pick visual styles",
			Validate: func(f *Form) validation.Result {
				if result := validation.SelectionCount(f.Styles.Len(), cfg.Styles, "style"); !result.Valid {
					return result
				}
				for _, id := range f.Styles.IDs() {
					if _, ok := cat.Style(id); !ok {
						return validation.Fail(MessageInvalidStyles)
					}
				}
				return validation.OK()
			},
		},
		{
			Number:      3,
			Title:       "Upload Photos",
			Description: "Add your photos",
			Validate: func(f *Form) validation.Result {
				return validation.FileCount(f.Photos.Len(), cfg.Photos.Bounds(), "photo")
			},
		},
	}
	return append(prior, wizard.FinalStep(4, "Review", "Confirm & submit", prior, nil))
}

// Definition binds the album steps to submission assembly. cat resolves style
// ids to prompt groups; nil uses the embedded catalog.
func Definition(cfg Config, cat *catalog.Catalog) wizard.Definition[Form] {
	if cat == nil {
		cat = catalog.MustDefault()
	}
	return wizard.Definition[Form]{
		Name:  Name,
		Steps: Steps(cfg, cat),
		Assemble: func(f *Form) gateway.Submission {
			return Assemble(f, cat)
		},
		Teardown: func(f *Form) {
			f.Photos.Clear()
		},
	}
}

// Assemble converts the record into a submission: sanitised text fields, the
// selected style ids with their prompt groups and the photo metadata.
func Assemble(f *Form, cat *catalog.Catalog) gateway.Submission {
	styles := f.Styles.IDs()
	sub := gateway.Submission{
		Flow: Name,
		Fields: map[string]string{
			"title":       strings.TrimSpace(formdata.SanitizeText(f.Title)),
			"description": strings.TrimSpace(formdata.SanitizeText(f.Description)),
		},
		Options: map[string][]string{
			"styles": styles,
		},
	}
	if cat != nil {
		sub.Options["promptGroups"] = cat.PromptGroups(styles)
	}
	for _, file := range f.Photos.Metadata() {
		sub.Files = append(sub.Files, gateway.FileMeta{
			Name:        file.Name,
			Size:        file.Size,
			ContentType: file.ContentType,
		})
	}
	return sub
}

// Option configures New.
type Option func(*builder)

type builder struct {
	catalog *catalog.Catalog
	files   []formdata.FilesOption
	flow    []wizard.Option
}

// WithCatalog sets the style catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(b *builder) {
		if cat != nil {
			b.catalog = cat
		}
	}
}

// WithFileOptions configures the photo list (previews, clock).
func WithFileOptions(options ...formdata.FilesOption) Option {
	return func(b *builder) {
		b.files = append(b.files, options...)
	}
}

// WithFlowOptions forwards options to the underlying wizard flow.
func WithFlowOptions(options ...wizard.Option) Option {
	return func(b *builder) {
		b.flow = append(b.flow, options...)
	}
}

// New starts an album flow on step 1 with an empty record.
func New(cfg Config, options ...Option) (*Flow, error) {
	b := &builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return wizard.New(Definition(cfg, b.catalog), NewForm(cfg, b.files...), b.flow...)
}
