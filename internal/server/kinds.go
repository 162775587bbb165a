package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/request"
	"github.com/goliatone/go-memora/pkg/summary"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// FieldPatch carries the text and selection fields a client may edit. Nil
// members are left untouched.
type FieldPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Styles      *[]string `json:"styles,omitempty"`
	Categories  *[]string `json:"categories,omitempty"`
}

// FlowDeps are the collaborators shared by every flow the server starts.
type FlowDeps struct {
	Catalog       *catalog.Catalog
	Gateway       gateway.Gateway
	Previews      formdata.PreviewProvider
	Summary       *summary.Renderer
	Logger        *slog.Logger
	Recorder      wizard.Recorder
	SubmitTimeout time.Duration
}

func (d FlowDeps) flowOptions(id, token string) []wizard.Option {
	opts := []wizard.Option{
		wizard.WithID(id),
		wizard.WithLogger(d.Logger),
		wizard.WithGateway(d.Gateway),
		wizard.WithRecorder(d.Recorder),
		wizard.WithSubmitTimeout(d.SubmitTimeout),
	}
	if token != "" {
		opts = append(opts, wizard.WithSession(bearer(token)))
	}
	return opts
}

func (d FlowDeps) fileOptions() []formdata.FilesOption {
	if d.Previews == nil {
		return nil
	}
	return []formdata.FilesOption{formdata.WithPreviews(d.Previews)}
}

type bearer string

func (b bearer) Token() string { return string(b) }

// AlbumFactory starts album creation flows.
func AlbumFactory(cfg album.Config, deps FlowDeps) Factory {
	return func(id, token string) (*Live, error) {
		flow, err := album.New(cfg,
			album.WithCatalog(deps.Catalog),
			album.WithFileOptions(deps.fileOptions()...),
			album.WithFlowOptions(deps.flowOptions(id, token)...),
		)
		if err != nil {
			return nil, err
		}
		rec := &albumRecord{flow: flow, catalog: deps.Catalog, summary: deps.Summary, maxPhotos: cfg.Photos.Max}
		return &Live{Stepper: flow, Record: rec}, nil
	}
}

// RequestFactory starts service request flows.
func RequestFactory(cfg request.Config, deps FlowDeps) Factory {
	return func(id, token string) (*Live, error) {
		flow, err := request.New(cfg,
			request.WithFileOptions(deps.fileOptions()...),
			request.WithFlowOptions(deps.flowOptions(id, token)...),
		)
		if err != nil {
			return nil, err
		}
		rec := &requestRecord{flow: flow, catalog: deps.Catalog, summary: deps.Summary}
		return &Live{Stepper: flow, Record: rec}, nil
	}
}

type albumRecord struct {
	flow      *album.Flow
	catalog   *catalog.Catalog
	summary   *summary.Renderer
	maxPhotos int
}

func (r *albumRecord) Patch(p FieldPatch) error {
	if p.Name != nil || p.Email != nil || p.Categories != nil {
		return fmt.Errorf("%w: album flows take title, description and styles", ErrFieldNotInFlow)
	}
	if p.Styles != nil && r.catalog != nil {
		for _, id := range *p.Styles {
			if _, ok := r.catalog.Style(strings.TrimSpace(id)); !ok {
				return fmt.Errorf("%w: style %q", ErrUnknownOption, id)
			}
		}
	}
	return r.flow.Edit(func(f *album.Form) {
		if p.Title != nil {
			f.SetTitle(*p.Title)
		}
		if p.Description != nil {
			f.SetDescription(*p.Description)
		}
		if p.Styles != nil {
			f.Styles.Set(*p.Styles)
		}
	})
}

func (r *albumRecord) AddFiles(files ...formdata.File) ([]formdata.IntakeError, error) {
	var rejected []formdata.IntakeError
	err := r.flow.Edit(func(f *album.Form) {
		rejected = f.Photos.Add(files...)
	})
	return rejected, err
}

func (r *albumRecord) RemoveFile(id string) error {
	var removeErr error
	if err := r.flow.Edit(func(f *album.Form) {
		removeErr = f.Photos.RemoveID(id)
	}); err != nil {
		return err
	}
	return removeErr
}

func (r *albumRecord) Snapshot() any {
	return r.snapshot()
}

func (r *albumRecord) snapshot() album.Snapshot {
	var snap album.Snapshot
	r.flow.View(func(f *album.Form) {
		snap = f.Snapshot()
	})
	return snap
}

func (r *albumRecord) Review() (string, error) {
	if r.summary == nil {
		return "", fmt.Errorf("server: no summary renderer")
	}
	return r.summary.AlbumReview(r.snapshot(), r.maxPhotos)
}

type requestRecord struct {
	flow    *request.Flow
	catalog *catalog.Catalog
	summary *summary.Renderer
}

func (r *requestRecord) Patch(p FieldPatch) error {
	if p.Title != nil || p.Styles != nil {
		return fmt.Errorf("%w: request flows take name, email, categories and description", ErrFieldNotInFlow)
	}
	if p.Categories != nil && r.catalog != nil {
		for _, id := range *p.Categories {
			if _, ok := r.catalog.ServiceCategory(strings.TrimSpace(id)); !ok {
				return fmt.Errorf("%w: category %q", ErrUnknownOption, id)
			}
		}
	}
	return r.flow.Edit(func(f *request.Form) {
		if p.Name != nil {
			f.Name = *p.Name
		}
		if p.Email != nil {
			f.Email = *p.Email
		}
		if p.Description != nil {
			f.Description = *p.Description
		}
		if p.Categories != nil {
			f.Categories.Set(*p.Categories)
		}
	})
}

func (r *requestRecord) AddFiles(files ...formdata.File) ([]formdata.IntakeError, error) {
	var rejected []formdata.IntakeError
	err := r.flow.Edit(func(f *request.Form) {
		rejected = f.Photos.Add(files...)
	})
	return rejected, err
}

func (r *requestRecord) RemoveFile(id string) error {
	var removeErr error
	if err := r.flow.Edit(func(f *request.Form) {
		removeErr = f.Photos.RemoveID(id)
	}); err != nil {
		return err
	}
	return removeErr
}

func (r *requestRecord) Snapshot() any {
	return r.snapshot()
}

func (r *requestRecord) snapshot() request.Snapshot {
	var snap request.Snapshot
	r.flow.View(func(f *request.Form) {
		snap = f.Snapshot()
	})
	return snap
}

func (r *requestRecord) Review() (string, error) {
	if r.summary == nil {
		return "", fmt.Errorf("server: no summary renderer")
	}
	return r.summary.RequestReview(r.snapshot())
}
