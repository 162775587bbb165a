package formdata

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewProvider creates and releases preview handles for uploaded files
// (the object-URL analogue). Every handle returned by Create must be passed
// to Release exactly once.
type PreviewProvider interface {
	Create(file File) (string, error)
	Release(handle string)
}

// MemoryPreviews hands out opaque preview handles and tracks which are live.
// It is safe for concurrent use.
type MemoryPreviews struct {
	mu   sync.Mutex
	live map[string]File
}

// NewMemoryPreviews constructs an empty provider.
func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{live: make(map[string]File)}
}

// Create registers file and returns its handle.
func (p *MemoryPreviews) Create(file File) (string, error) {
	handle := "preview:" + uuid.NewString()
	p.mu.Lock()
	p.live[handle] = File{Name: file.Name, Size: file.Size, ContentType: file.ContentType}
	p.mu.Unlock()
	return handle, nil
}

// Release forgets handle. Unknown handles are ignored.
func (p *MemoryPreviews) Release(handle string) {
	p.mu.Lock()
	delete(p.live, handle)
	p.mu.Unlock()
}

// Live reports how many handles are outstanding.
func (p *MemoryPreviews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Lookup returns the file metadata behind a live handle.
func (p *MemoryPreviews) Lookup(handle string) (File, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	file, ok := p.live[handle]
	return file, ok
}

type noPreviews struct{}

func (noPreviews) Create(File) (string, error) { return "", nil }
func (noPreviews) Release(string) {}
