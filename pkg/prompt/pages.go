package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/request"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// FileReader describes a local file for upload. formdata.ReadFile is the
// default.
type FileReader func(path string) (formdata.File, error)

// Photo list actions.
const (
	PhotoAdd    = "Add photos"
	PhotoRemove = "Remove a photo"
	PhotoDone   = "Done"
)

// AlbumPages returns the pages of the album flow.
func AlbumPages(cat *catalog.Catalog, read FileReader) map[int]Page[album.Form] {
	if cat == nil {
		cat = catalog.MustDefault()
	}
	if read == nil {
		read = formdata.ReadFile
	}
	styles := cat.Styles()

	return map[int]Page[album.Form]{
		1: func(ctx context.Context, s Screen, flow *album.Flow) error {
			var title, description string
			flow.View(func(f *album.Form) { title, description = f.Title, f.Description })

			title, err := s.Text(ctx, TextPrompt{Label: "Album title", Value: title})
			if err != nil {
				return err
			}
			description, err = s.Text(ctx, TextPrompt{Label: "Description (optional)", Value: description})
			if err != nil {
				return err
			}
			return flow.Edit(func(f *album.Form) {
				f.SetTitle(title)
				f.SetDescription(description)
			})
		},
		2: func(ctx context.Context, s Screen, flow *album.Flow) error {
			pick := PickPrompt{Label: "Choose styles", Options: make([]string, 0, len(styles))}
			flow.View(func(f *album.Form) {
				pick.Bounds = f.Styles.Bounds()
				for idx, style := range styles {
					pick.Options = append(pick.Options, style.Label)
					if f.Styles.Has(style.ID) {
						pick.Selected = append(pick.Selected, idx)
					}
				}
			})

			picked, err := s.Pick(ctx, pick)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(styles) {
					ids = append(ids, styles[idx].ID)
				}
			}
			return flow.Edit(func(f *album.Form) { f.Styles.Set(ids) })
		},
		3: func(ctx context.Context, s Screen, flow *album.Flow) error {
			return photosPage(ctx, s, read, flow, func(f *album.Form) *formdata.Files { return f.Photos })
		},
	}
}

// RequestPages returns the pages of the service request flow.
func RequestPages(cat *catalog.Catalog, read FileReader) map[int]Page[request.Form] {
	if cat == nil {
		cat = catalog.MustDefault()
	}
	if read == nil {
		read = formdata.ReadFile
	}
	categories := cat.ServiceCategories()

	return map[int]Page[request.Form]{
		1: func(ctx context.Context, s Screen, flow *request.Flow) error {
			var name, email string
			flow.View(func(f *request.Form) { name, email = f.Name, f.Email })

			name, err := s.Text(ctx, TextPrompt{Label: "Full name", Value: name})
			if err != nil {
				return err
			}
			email, err = s.Text(ctx, TextPrompt{Label: "Email address", Value: email})
			if err != nil {
				return err
			}
			return flow.Edit(func(f *request.Form) { f.Name, f.Email = name, email })
		},
		2: func(ctx context.Context, s Screen, flow *request.Flow) error {
			pick := PickPrompt{Label: "What are you looking for?", Options: make([]string, 0, len(categories))}
			flow.View(func(f *request.Form) {
				pick.Bounds = f.Categories.Bounds()
				for idx, category := range categories {
					pick.Options = append(pick.Options, category.Label)
					if f.Categories.Has(category.ID) {
						pick.Selected = append(pick.Selected, idx)
					}
				}
			})

			picked, err := s.Pick(ctx, pick)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(categories) {
					ids = append(ids, categories[idx].ID)
				}
			}
			return flow.Edit(func(f *request.Form) { f.Categories.Set(ids) })
		},
		3: func(ctx context.Context, s Screen, flow *request.Flow) error {
			return photosPage(ctx, s, read, flow, func(f *request.Form) *formdata.Files { return f.Photos })
		},
		4: func(ctx context.Context, s Screen, flow *request.Flow) error {
			var description string
			flow.View(func(f *request.Form) { description = f.Description })
			description, err := s.Text(ctx, TextPrompt{
				Label:     "Describe what you want",
				Value:     description,
				Help:      "Mood, occasion, people involved, or special requests.",
				Multiline: true,
			})
			if err != nil {
				return err
			}
			return flow.Edit(func(f *request.Form) { f.Description = description })
		},
	}
}

func photosPage[T any](ctx context.Context, s Screen, read FileReader, flow *wizard.Flow[T], files func(*T) *formdata.Files) error {
	for {
		var items []formdata.FileHandle
		var limits formdata.FileLimits
		flow.View(func(f *T) {
			items = files(f).Items()
			limits = files(f).Limits()
		})

		lines := []string{fmt.Sprintf("%d of %d photos", len(items), limits.MaxFiles)}
		for idx, item := range items {
			lines = append(lines, fmt.Sprintf("  %d. %s (%s)", idx+1, item.File.Name, humanize.IBytes(uint64(item.File.Size))))
		}
		if err := s.Show(ctx, strings.Join(lines, "\n")); err != nil {
			return err
		}

		options := []string{PhotoAdd, PhotoRemove, PhotoDone}
		if len(items) == 0 {
			options = []string{PhotoAdd, PhotoDone}
		}
		idx, err := s.Choose(ctx, ChoicePrompt{Label: "Photos", Options: options})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			return nil
		}

		switch options[idx] {
		case PhotoAdd:
			paths, err := s.Paths(ctx, PathPrompt{
				Label: "File paths (comma separated)",
				Help:  "Tab completes paths. JPEG, PNG, GIF and WebP images only.",
			})
			if err != nil {
				return err
			}
			if err := addPaths(ctx, s, read, flow, files, paths); err != nil {
				return err
			}
		case PhotoRemove:
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.File.Name)
			}
			pick, err := s.Choose(ctx, ChoicePrompt{Label: "Remove which photo?", Options: names})
			if err != nil {
				return err
			}
			if pick < 0 || pick >= len(items) {
				continue
			}
			id := items[pick].ID
			var removeErr error
			if err := flow.Edit(func(f *T) { removeErr = files(f).RemoveID(id) }); err != nil {
				return err
			}
			if removeErr != nil {
				if err := s.Problem(ctx, removeErr.Error()); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}
}

func addPaths[T any](ctx context.Context, s Screen, read FileReader, flow *wizard.Flow[T], files func(*T) *formdata.Files, paths []string) error {
	var batch []formdata.File
	var problems []string
	for _, path := range paths {
		file, err := read(path)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		batch = append(batch, file)
	}

	var rejected []formdata.IntakeError
	if err := flow.Edit(func(f *T) { rejected = files(f).Add(batch...) }); err != nil {
		return err
	}
	for _, rejection := range rejected {
		problems = append(problems, rejection.Error())
	}
	for _, problem := range problems {
		if err := s.Problem(ctx, problem); err != nil {
			return err
		}
	}
	return nil
}
