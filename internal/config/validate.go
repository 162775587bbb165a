package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-memora/internal/logging"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/validation"
)

// ValidationError represents a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate returns every invalid setting; nil when the config is usable.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, validateBounds("flows.album.styles", c.Flows.Album.Styles)...)
	errs = append(errs, validateUpload("flows.album.photos", c.Flows.Album.Photos)...)
	errs = append(errs, validateBounds("flows.request.categories", c.Flows.Request.Categories)...)
	errs = append(errs, validateUpload("flows.request.photos", c.Flows.Request.Photos)...)
	if c.Flows.Request.DescriptionMin < 0 {
		errs = append(errs, ValidationError{Field: "flows.request.description_min", Value: c.Flows.Request.DescriptionMin, Message: "must not be negative"})
	}

	switch c.Gateway.Mode {
	case GatewayMock:
	case GatewayHTTP:
		if u, err := url.Parse(c.Gateway.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: "gateway.endpoint", Value: c.Gateway.Endpoint, Message: "must be an absolute URL in http mode"})
		}
	default:
		errs = append(errs, ValidationError{Field: "gateway.mode", Value: c.Gateway.Mode, Message: "must be mock or http"})
	}
	if c.Gateway.Latency < 0 {
		errs = append(errs, ValidationError{Field: "gateway.latency", Value: c.Gateway.Latency, Message: "must not be negative"})
	}
	if c.Gateway.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "gateway.timeout", Value: c.Gateway.Timeout, Message: "must not be negative"})
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "is required"})
	}
	if c.Server.FlowTTL <= 0 {
		errs = append(errs, ValidationError{Field: "server.flow_ttl", Value: c.Server.FlowTTL, Message: "must be positive"})
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, ValidationError{Field: "server.max_upload_mb", Value: c.Server.MaxUploadMB, Message: "must be positive"})
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{Field: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"})
	}
	if f := strings.ToLower(c.Log.Format); f != logging.FormatText && f != logging.FormatJSON {
		errs = append(errs, ValidationError{Field: "log.format", Value: c.Log.Format, Message: "must be text or json"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateBounds(field string, b validation.Bounds) []ValidationError {
	var errs []ValidationError
	if b.Min < 0 {
		errs = append(errs, ValidationError{Field: field + ".min", Value: b.Min, Message: "must not be negative"})
	}
	if b.Max < 0 {
		errs = append(errs, ValidationError{Field: field + ".max", Value: b.Max, Message: "must not be negative"})
	}
	if b.Max > 0 && b.Min > b.Max {
		errs = append(errs, ValidationError{Field: field, Value: fmt.Sprintf("%d..%d", b.Min, b.Max), Message: "min must not exceed max"})
	}
	return errs
}

func validateUpload(field string, u formdata.UploadConfig) []ValidationError {
	errs := validateBounds(field, u.Bounds())
	if u.Max == 0 {
		errs = append(errs, ValidationError{Field: field + ".max", Value: u.Max, Message: "uploads need a ceiling"})
	}
	if u.MaxMB <= 0 {
		errs = append(errs, ValidationError{Field: field + ".max_mb", Value: u.MaxMB, Message: "must be positive"})
	}
	return errs
}
