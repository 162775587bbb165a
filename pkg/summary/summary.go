package summary

import (
	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/request"
)

// Renderer produces review text for both flows.
type Renderer struct {
	engine  *Engine
	catalog *catalog.Catalog
}

// New returns a renderer over the embedded templates. cat resolves style and
// category labels; nil uses the embedded catalog.
func New(cat *catalog.Catalog) (*Renderer, error) {
	engine, err := NewEngine(nil)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		cat = catalog.MustDefault()
	}
	return &Renderer{engine: engine, catalog: cat}, nil
}

type photoView struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// AlbumReview renders the album flow's review step.
func (r *Renderer) AlbumReview(snap album.Snapshot, maxPhotos int) (string, error) {
	styles := r.catalog.ResolveStyles(snap.Styles)
	photos := make([]photoView, 0, len(snap.Photos))
	for _, item := range snap.Photos {
		photos = append(photos, photoView{Name: item.File.Name, Size: item.File.Size})
	}
	return r.engine.Render("album_review", map[string]any{
		"title":       snap.Title,
		"description": snap.Description,
		"styles":      styles,
		"photos":      photos,
		"maxPhotos":   maxPhotos,
	})
}

// RequestReview renders the request flow's final summary.
func (r *Renderer) RequestReview(snap request.Snapshot) (string, error) {
	photos := make([]photoView, 0, len(snap.Photos))
	for _, item := range snap.Photos {
		photos = append(photos, photoView{Name: item.File.Name, Size: item.File.Size})
	}
	return r.engine.Render("request_review", map[string]any{
		"name":        snap.Name,
		"email":       snap.Email,
		"categories":  r.catalog.CategoryLabels(snap.Categories),
		"photos":      photos,
		"description": snap.Description,
	})
}

// AlbumDetail renders one dashboard album.
func (r *Renderer) AlbumDetail(a albums.Album) (string, error) {
	return r.engine.Render("album_detail", map[string]any{
		"album":   a,
		"status":  a.Status.Label(),
		"created": humanize.Time(a.CreatedAt),
		"pending": a.Status.Pending(),
		"refresh": albums.RefreshInterval.String(),
	})
}
