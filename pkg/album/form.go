package album

import (
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/validation"
)

// Config holds the per-flow bounds of the album flow.
type Config struct {
	Styles validation.Bounds     `json:"styles" mapstructure:"styles"`
	Photos formdata.UploadConfig `json:"photos" mapstructure:"photos"`
}

// DefaultConfig allows one to three styles and one to ten photos of up to 5MB.
func DefaultConfig() Config {
	return Config{
		Styles: validation.Bounds{Min: 1, Max: 3},
		Photos: formdata.UploadConfig{Min: 1, Max: 10, MaxMB: 5},
	}
}

// Form is the record collected by the album flow.
type Form struct {
	Title       string
	Description string
	Styles      formdata.Selection
	Photos      *formdata.Files
}

// NewForm returns an empty record sized by cfg.
func NewForm(cfg Config, files ...formdata.FilesOption) *Form {
	return &Form{
		Styles: formdata.NewSelection(cfg.Styles),
		Photos: formdata.NewFiles(cfg.Photos.Limits("photo"), files...),
	}
}

// SetTitle overwrites the title.
func (f *Form) SetTitle(title string) { f.Title = title }

// SetDescription overwrites the description.
func (f *Form) SetDescription(description string) { f.Description = description }

// Snapshot is a read-only view of the record.
type Snapshot struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Styles      []string               `json:"selectedStyleIds"`
	Photos      []formdata.FileHandle  `json:"photos"`
	PhotoErrors []formdata.IntakeError `json:"photoErrors,omitempty"`
}

// Snapshot copies the record.
func (f *Form) Snapshot() Snapshot {
	return Snapshot{
		Title:       f.Title,
		Description: f.Description,
		Styles:      f.Styles.IDs(),
		Photos:      f.Photos.Items(),
		PhotoErrors: f.Photos.IntakeErrors(),
	}
}
