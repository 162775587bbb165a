package request

import (
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/validation"
)

// Config holds the per-flow bounds of the request flow.
type Config struct {
	Categories     validation.Bounds     `json:"categories" mapstructure:"categories"`
	Photos         formdata.UploadConfig `json:"photos" mapstructure:"photos"`
	DescriptionMin int                   `json:"description_min" mapstructure:"description_min"`
}

// DefaultConfig asks for at least one category, five to ten reference photos
// and a description longer than ten characters.
func DefaultConfig() Config {
	return Config{
		Categories:     validation.Bounds{Min: 1},
		Photos:         formdata.UploadConfig{Min: 5, Max: 10, MaxMB: 5},
		DescriptionMin: 10,
	}
}

// Form is the record collected by the request flow.
type Form struct {
	Name        string
	Email       string
	Categories  formdata.Selection
	Photos      *formdata.Files
	Description string
}

// NewForm returns an empty record sized by cfg.
func NewForm(cfg Config, files ...formdata.FilesOption) *Form {
	return &Form{
		Categories: formdata.NewSelection(cfg.Categories),
		Photos:     formdata.NewFiles(cfg.Photos.Limits("photo"), files...),
	}
}

// Snapshot is a read-only view of the record.
type Snapshot struct {
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Categories  []string               `json:"categories"`
	Photos      []formdata.FileHandle  `json:"photos"`
	PhotoErrors []formdata.IntakeError `json:"photoErrors,omitempty"`
	Description string                 `json:"description"`
}

// Snapshot copies the record.
func (f *Form) Snapshot() Snapshot {
	return Snapshot{
		Name:        f.Name,
		Email:       f.Email,
		Categories:  f.Categories.IDs(),
		Photos:      f.Photos.Items(),
		PhotoErrors: f.Photos.IntakeErrors(),
		Description: f.Description,
	}
}
