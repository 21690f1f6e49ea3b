package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Manifest maps category names to filenames. Both the key order and the order of each
// filename list are significant and survive a parse/serialize round trip.
type Manifest struct {
	m *orderedmap.OrderedMap[string, []string]
}

// Entry is one displayable image. The pair itself is the identity.
type Entry struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
}

var errNotObject = errors.New("manifest must be a JSON object of filename arrays")

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{m: orderedmap.New[string, []string]()}
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	m := NewManifest()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalJSON replaces the manifest contents with the decoded document.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	om := orderedmap.New[string, []string]()
	if err := om.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	m.m = om
	return nil
}

// MarshalJSON encodes the manifest preserving key order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil || m.m.Len() == 0 {
		return []byte("{}"), nil
	}
	// nil lists are written as [] so the document keeps its array shape.
	out := orderedmap.New[string, []string](m.m.Len())
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		files := p.Value
		if files == nil {
			files = []string{}
		}
		out.Set(p.Key, files)
	}
	return out.MarshalJSON()
}

func (m *Manifest) ensure() {
	if m.m == nil {
		m.m = orderedmap.New[string, []string]()
	}
}

// Keys returns the category keys in document order.
func (m *Manifest) Keys() []string {
	if m == nil || m.m == nil {
		return nil
	}
	keys := make([]string, 0, m.m.Len())
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Files returns a copy of the filenames stored under the exact key.
func (m *Manifest) Files(key string) []string {
	if m == nil || m.m == nil {
		return nil
	}
	files, ok := m.m.Get(key)
	if !ok {
		return nil
	}
	return append([]string(nil), files...)
}

// Has reports whether key is present exactly as spelled.
func (m *Manifest) Has(key string) bool {
	if m == nil || m.m == nil {
		return false
	}
	_, ok := m.m.Get(key)
	return ok
}

// Lookup finds a category key ignoring case and returns the stored key with a copy of its files.
func (m *Manifest) Lookup(name string) (string, []string, bool) {
	if m == nil || m.m == nil {
		return "", nil, false
	}
	name = strings.TrimSpace(name)
	if files, ok := m.m.Get(name); ok {
		return name, append([]string(nil), files...), true
	}
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		if strings.EqualFold(p.Key, name) {
			return p.Key, append([]string(nil), p.Value...), true
		}
	}
	return "", nil, false
}

// Set stores files under key. New keys are appended after existing ones.
func (m *Manifest) Set(key string, files []string) {
	m.ensure()
	m.m.Set(key, append([]string(nil), files...))
}

// Count returns the number of files under the exact key.
func (m *Manifest) Count(key string) int {
	if m == nil || m.m == nil {
		return 0
	}
	files, _ := m.m.Get(key)
	return len(files)
}

// Total returns the number of files across all categories.
func (m *Manifest) Total() int {
	if m == nil || m.m == nil {
		return 0
	}
	total := 0
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		total += len(p.Value)
	}
	return total
}

// Flatten lists every image in category order, then within-category order.
func (m *Manifest) Flatten() []Entry {
	out := make([]Entry, 0, m.Total())
	if m == nil || m.m == nil {
		return out
	}
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		for _, f := range p.Value {
			out = append(out, Entry{Category: p.Key, Filename: f})
		}
	}
	return out
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	out := NewManifest()
	if m == nil || m.m == nil {
		return out
	}
	for p := m.m.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	return out
}
