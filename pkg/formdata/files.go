package formdata

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-memora/pkg/validation"
)

// Intake rejection messages.
const (
	MessageInvalidType = "Not a valid image file"
	MessageDuplicate   = "File already added"
	MessageNoPreview   = "Could not preview file"
)

// FilesOption configures a Files list.
type FilesOption func(*Files)

// WithPreviews sets the provider used for file previews.
func WithPreviews(provider PreviewProvider) FilesOption {
	return func(f *Files) {
		if provider != nil {
			f.previews = provider
		}
	}
}

// WithClock overrides the time source used to expire intake errors.
func WithClock(now func() time.Time) FilesOption {
	return func(f *Files) {
		if now != nil {
			f.now = now
		}
	}
}

// WithDismissAfter overrides how long intake errors stay visible.
func WithDismissAfter(window time.Duration) FilesOption {
	return func(f *Files) {
		f.window = window
	}
}

// Files is an ordered list of accepted uploads. It is not safe for concurrent
// use; flows serialise access.
type Files struct {
	limits   FileLimits
	previews PreviewProvider
	now      func() time.Time
	window   time.Duration
	items    []FileHandle
	log      *IntakeLog
}

// NewFiles constructs an empty list enforcing limits.
func NewFiles(limits FileLimits, options ...FilesOption) *Files {
	f := &Files{
		limits:   limits,
		previews: noPreviews{},
		now:      time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.log = NewIntakeLog(f.window, f.now)
	return f
}

// Limits returns the configured limits.
func (f *Files) Limits() FileLimits {
	return f.limits
}

// Len returns the number of accepted files.
func (f *Files) Len() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

// Items returns a copy of the accepted files in order.
func (f *Files) Items() []FileHandle {
	if f == nil || len(f.items) == 0 {
		return nil
	}
	return append([]FileHandle(nil), f.items...)
}

// Full reports whether the count ceiling has been reached.
func (f *Files) Full() bool {
	return f.limits.MaxFiles > 0 && len(f.items) >= f.limits.MaxFiles
}

// Add validates each file independently and appends the accepted ones. Every
// rejected file yields its own IntakeError; files past the count ceiling are
// rejected one by one rather than truncated. The returned errors are also
// recorded in the intake log.
func (f *Files) Add(files ...File) []IntakeError {
	var rejected []IntakeError
	reject := func(file File, message string) {
		rejected = append(rejected, IntakeError{FileName: file.Name, Message: message})
	}

	for _, file := range files {
		if f.limits.MaxFiles > 0 && len(f.items) >= f.limits.MaxFiles {
			reject(file, validation.MaxFilesMessage(f.limits.MaxFiles, f.limits.noun()))
			continue
		}
		if !f.limits.allows(file.ContentType) {
			reject(file, MessageInvalidType)
			continue
		}
		if f.limits.MaxBytes > 0 && file.Size > f.limits.MaxBytes {
			reject(file, f.limits.tooLargeMessage())
			continue
		}
		if f.contains(file) {
			reject(file, MessageDuplicate)
			continue
		}

		preview, err := f.previews.Create(file)
		if err != nil {
			reject(file, MessageNoPreview)
			continue
		}
		f.items = append(f.items, FileHandle{
			ID:      uuid.NewString(),
			File:    file,
			Preview: preview,
		})
	}

	f.log.Record(rejected)
	return rejected
}

// Remove drops the file at index and releases its preview.
func (f *Files) Remove(index int) error {
	if index < 0 || index >= len(f.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	f.release(f.items[index])
	f.items = append(f.items[:index], f.items[index+1:]...)
	return nil
}

// RemoveID drops the file with the given handle id.
func (f *Files) RemoveID(id string) error {
	for idx, item := range f.items {
		if item.ID == id {
			return f.Remove(idx)
		}
	}
	return fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

// Clear drops every file and releases all previews.
func (f *Files) Clear() {
	if f == nil {
		return
	}
	for _, item := range f.items {
		f.release(item)
	}
	f.items = nil
}

// IntakeErrors returns the rejections from the latest batch that are still
// inside the display window.
func (f *Files) IntakeErrors() []IntakeError {
	if f == nil {
		return nil
	}
	return f.log.Active()
}

// Metadata returns the name, size and type of each accepted file.
func (f *Files) Metadata() []File {
	if f == nil || len(f.items) == 0 {
		return nil
	}
	out := make([]File, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, File{Name: item.File.Name, Size: item.File.Size, ContentType: item.File.ContentType})
	}
	return out
}

func (f *Files) contains(file File) bool {
	for _, item := range f.items {
		if item.File.Same(file) {
			return true
		}
	}
	return false
}

func (f *Files) release(item FileHandle) {
	if item.Preview != "" {
		f.previews.Release(item.Preview)
	}
}
