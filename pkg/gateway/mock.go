package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/catalog"
)

// Messages returned by the mock gateway when it re-validates a submission.
const (
	MessageTitleRequired  = "Album title is required"
	MessageStyleRequired  = "Please select at least one style"
	MessagePhotosRequired = "Please upload at least one photo"
)

// DefaultLatency is the simulated round trip of the mock gateway.
const DefaultLatency = 1500 * time.Millisecond

// MockOption configures a Mock gateway.
type MockOption func(*Mock)

// WithLatency sets the simulated network delay. Zero disables it.
func WithLatency(d time.Duration) MockOption {
	return func(m *Mock) {
		if d >= 0 {
			m.latency = d
		}
	}
}

// WithRepository sets where created albums are stored.
func WithRepository(repo *albums.Repository) MockOption {
	return func(m *Mock) {
		if repo != nil {
			m.repo = repo
		}
	}
}

// WithCatalog sets the catalog used to resolve style ids.
func WithCatalog(cat *catalog.Catalog) MockOption {
	return func(m *Mock) {
		if cat != nil {
			m.catalog = cat
		}
	}
}

// WithLogger sets the logger the mock reports payloads to.
func WithLogger(logger *slog.Logger) MockOption {
	return func(m *Mock) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFailure makes every submission fail with message. An empty message
// restores normal behaviour.
func WithFailure(message string) MockOption {
	return func(m *Mock) {
		m.failWith = strings.TrimSpace(message)
	}
}

// Mock is an in-process gateway that simulates latency, re-validates album
// submissions and records created albums in a repository.
type Mock struct {
	latency  time.Duration
	repo     *albums.Repository
	catalog  *catalog.Catalog
	logger   *slog.Logger
	failWith string
}

var _ Gateway = (*Mock)(nil)

// NewMock constructs a mock gateway.
func NewMock(options ...MockOption) *Mock {
	m := &Mock{
		latency: DefaultLatency,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	if m.repo == nil {
		m.repo = albums.NewRepository()
	}
	if m.catalog == nil {
		m.catalog = catalog.MustDefault()
	}
	return m
}

// Repository exposes the album store backing the mock.
func (m *Mock) Repository() *albums.Repository {
	return m.repo
}

// Submit waits for the simulated latency, then creates the album or accepts
// the service request.
func (m *Mock) Submit(ctx context.Context, submission Submission) (Outcome, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return Outcome{}, err
	}
	if m.failWith != "" {
		return Failed(m.failWith), nil
	}

	switch submission.Flow {
	case FlowAlbum:
		return m.createAlbum(ctx, submission)
	case FlowRequest:
		id := "request_" + uuid.NewString()
		m.logger.Info("service request submitted",
			"id", id,
			"name", submission.Field("name"),
			"categories", submission.Options["categories"],
			"reference_images", len(submission.Files),
		)
		return Succeeded(id), nil
	default:
		return Failed("Unknown form type"), nil
	}
}

func (m *Mock) createAlbum(ctx context.Context, submission Submission) (Outcome, error) {
	title := submission.Field("title")
	styleIDs := submission.Options["styles"]
	switch {
	case title == "":
		return Failed(MessageTitleRequired), nil
	case len(styleIDs) == 0:
		return Failed(MessageStyleRequired), nil
	case len(submission.Files) == 0:
		return Failed(MessagePhotosRequired), nil
	}

	styles := m.catalog.ResolveStyles(styleIDs)
	album, err := m.repo.Create(ctx, albums.NewAlbum{
		Title:       title,
		Description: submission.Field("description"),
		Styles:      styles,
		PhotoCount:  len(submission.Files),
	})
	if err != nil {
		return Outcome{}, err
	}

	names := make([]string, 0, len(submission.Files))
	for _, file := range submission.Files {
		names = append(names, file.Name)
	}
	m.logger.Info("album submission payload",
		"album_id", album.ID,
		"title", title,
		"styles", styleIDs,
		"prompt_groups", m.catalog.PromptGroups(styleIDs),
		"photos", names,
	)
	return Succeeded(album.ID), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
