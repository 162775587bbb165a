package formdata

import (
	"strings"

	"github.com/goliatone/go-memora/pkg/validation"
)

// Selection is an ordered set of option identifiers with a cardinality
// range. Add and Toggle refuse to grow past the upper bound; Set writes
// unconditionally and leaves range checks to validation.
type Selection struct {
	bounds validation.Bounds
	ids    []string
}

// NewSelection constructs an empty selection.
func NewSelection(bounds validation.Bounds) Selection {
	return Selection{bounds: bounds}
}

// Bounds returns the configured range.
func (s *Selection) Bounds() validation.Bounds {
	return s.bounds
}

// IDs returns a copy of the selected identifiers in selection order.
func (s *Selection) IDs() []string {
	if len(s.ids) == 0 {
		return nil
	}
	return append([]string(nil), s.ids...)
}

// Len returns the number of selected options.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Add selects id. It is a no-op, returning false, when id is blank, already
// selected or the selection is at its upper bound.
func (s *Selection) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || s.Has(id) {
		return false
	}
	if !s.bounds.Unbounded() && len(s.ids) >= s.bounds.Max {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deselects id and reports whether anything changed.
func (s *Selection) Remove(id string) bool {
	for idx, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:idx], s.ids[idx+1:]...)
			return true
		}
	}
	return false
}

// Toggle deselects id when selected, otherwise attempts Add.
func (s *Selection) Toggle(id string) bool {
	if s.Remove(id) {
		return true
	}
	return s.Add(id)
}

// Set replaces the selection with ids, dropping blanks and duplicates.
func (s *Selection) Set(ids []string) {
	s.ids = nil
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}
