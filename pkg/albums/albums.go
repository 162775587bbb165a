package albums

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-memora/pkg/catalog"
)

// Status tracks album generation progress.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Label returns the display label for s.
func (s Status) Label() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// Pending reports whether the album is still being generated and its detail
// view should keep refreshing.
func (s Status) Pending() bool {
	return s == StatusSubmitted || s == StatusInProgress
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// RefreshInterval is how often pending album details are re-fetched.
const RefreshInterval = 30 * time.Second

// GeneratedImage is one result produced by the album generator.
type GeneratedImage struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	StyleID      string    `json:"styleId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Album is a user's album as listed on the dashboard.
type Album struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	Status             Status           `json:"status"`
	SelectedStyles     []catalog.Style  `json:"selectedStyles"`
	UploadedPhotoCount int              `json:"uploadedPhotoCount"`
	GeneratedImages    []GeneratedImage `json:"generatedImages,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// NewAlbum is the data needed to create an album record.
type NewAlbum struct {
	Title       string
	Description string
	Styles      []catalog.Style
	PhotoCount  int
}

// ErrNotFound is returned for unknown album ids.
var ErrNotFound = errors.New("albums: album not found")

// Repository keeps albums in memory. It is safe for concurrent use.
type Repository struct {
	mu     sync.RWMutex
	albums map[string]Album
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the repository time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository constructs an empty repository.
func NewRepository(options ...Option) *Repository {
	r := &Repository{
		albums: make(map[string]Album),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// NewID returns a fresh album identifier.
func NewID() string {
	return "album_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// Create stores a new album in the submitted state.
func (r *Repository) Create(ctx context.Context, in NewAlbum) (Album, error) {
	if err := ctx.Err(); err != nil {
		return Album{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return Album{}, errors.New("albums: title is required")
	}
	now := r.now().UTC()
	album := Album{
		ID:                 NewID(),
		Title:              in.Title,
		Description:        in.Description,
		Status:             StatusSubmitted,
		SelectedStyles:     append([]catalog.Style(nil), in.Styles...),
		UploadedPhotoCount: in.PhotoCount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	r.mu.Lock()
	r.albums[album.ID] = album
	r.mu.Unlock()
	return album, nil
}

// Put stores album as-is, replacing any existing record with the same id.
func (r *Repository) Put(album Album) {
	r.mu.Lock()
	r.albums[album.ID] = album
	r.mu.Unlock()
}

// Get returns the album with id.
func (r *Repository) Get(ctx context.Context, id string) (Album, error) {
	if err := ctx.Err(); err != nil {
		return Album{}, err
	}
	r.mu.RLock()
	album, ok := r.albums[id]
	r.mu.RUnlock()
	if !ok {
		return Album{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return album, nil
}

// List returns every album, newest first.
func (r *Repository) List(ctx context.Context) ([]Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Album, 0, len(r.albums))
	for _, album := range r.albums {
		out = append(out, album)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetStatus moves an album to status and, for completed albums, attaches the
// generated images.
func (r *Repository) SetStatus(ctx context.Context, id string, status Status, images ...GeneratedImage) (Album, error) {
	if err := ctx.Err(); err != nil {
		return Album{}, err
	}
	if !status.Valid() {
		return Album{}, fmt.Errorf("albums: unknown status %q", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	album, ok := r.albums[id]
	if !ok {
		return Album{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	album.Status = status
	album.UpdatedAt = r.now().UTC()
	if len(images) > 0 {
		album.GeneratedImages = append([]GeneratedImage(nil), images...)
	}
	r.albums[id] = album
	return album, nil
}
