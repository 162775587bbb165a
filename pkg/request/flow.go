package request

import (
	"strings"

	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// Name is the flow name carried by request submissions.
const Name = gateway.FlowRequest

// Messages shown by the request steps.
const (
	MessageNameRequired        = "Name is required"
	MessageEmailRequired       = "Email is required"
	MessageEmailInvalid        = "Please enter a valid email"
	MessageDescriptionRequired = "Please describe what you're looking for"
	MessageMoreDetail          = "Please provide more detail"
)

// Flow is a running request flow.
type Flow = wizard.Flow[Form]

// Steps returns the request step table for cfg.
func Steps(cfg Config) []wizard.Step[Form] {
	prior := []wizard.Step[Form]{
		{
			Number:      1,
			Title:       "Your Details",
			Description: "Tell us who you are",
			Validate: func(f *Form) validation.Result {
				return validation.All(
					validation.RequireText(f.Name, MessageNameRequired),
					validation.RequireText(f.Email, MessageEmailRequired),
					validation.Email(f.Email, MessageEmailInvalid),
				)
			},
		},
		{
			Number:      2,
			Title:       "Photo Type",
			Description: "What are you looking for?",
			Validate: func(f *Form) validation.Result {
				return validation.SelectionCount(f.Categories.Len(), cfg.Categories, "category")
			},
		},
		{
			Number:      3,
			Title:       "Your Photos",
			Description: "Upload reference photos",
			Validate: func(f *Form) validation.Result {
				return validation.FileCount(f.Photos.Len(), cfg.Photos.Bounds(), "photo")
			},
		},
	}

	vision := func(f *Form) validation.Result {
		return validation.All(
			validation.RequireText(f.Description, MessageDescriptionRequired),
			validation.MinLength(f.Description, cfg.DescriptionMin, MessageMoreDetail),
		)
	}
	return append(prior, wizard.FinalStep(4, "Your Vision", "Describe what you want", prior, vision))
}

// Definition binds the request steps to submission assembly.
func Definition(cfg Config) wizard.Definition[Form] {
	return wizard.Definition[Form]{
		Name:     Name,
		Steps:    Steps(cfg),
		Assemble: Assemble,
		Teardown: func(f *Form) {
			f.Photos.Clear()
		},
	}
}

// Assemble converts the record into a submission.
func Assemble(f *Form) gateway.Submission {
	sub := gateway.Submission{
		Flow: Name,
		Fields: map[string]string{
			"name":        strings.TrimSpace(formdata.SanitizeText(f.Name)),
			"email":       strings.TrimSpace(f.Email),
			"description": strings.TrimSpace(formdata.SanitizeText(f.Description)),
		},
		Options: map[string][]string{
			"categories": f.Categories.IDs(),
		},
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
	files []formdata.FilesOption
	flow  []wizard.Option
}

// WithFileOptions configures the reference photo list.
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

// New starts a request flow on step 1 with an empty record.
func New(cfg Config, options ...Option) (*Flow, error) {
	b := &builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return wizard.New(Definition(cfg), NewForm(cfg, b.files...), b.flow...)
}
