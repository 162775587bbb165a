package formdata

import "github.com/goliatone/go-memora/pkg/validation"

// UploadConfig is the configurable shape of an upload step: how many files
// the step needs and how large each may be.
type UploadConfig struct {
	Min   int `json:"min" mapstructure:"min"`
	Max   int `json:"max" mapstructure:"max"`
	MaxMB int `json:"max_mb" mapstructure:"max_mb"`
}

// Bounds returns the count range checked by the step validator.
func (c UploadConfig) Bounds() validation.Bounds {
	return validation.Bounds{Min: c.Min, Max: c.Max}
}

// Limits returns the intake limits for image uploads named noun.
func (c UploadConfig) Limits(noun string) FileLimits {
	return FileLimits{
		MaxFiles:     c.Max,
		MaxBytes:     int64(c.MaxMB) * MegaByte,
		AllowedTypes: append([]string(nil), DefaultImageTypes...),
		Noun:         noun,
	}
}
