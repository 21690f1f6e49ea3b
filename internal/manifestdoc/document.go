// Package manifestdoc edits the gallery manifest on disk. Every change is a whole-document
// transaction: read, mutate in memory, write the full document back atomically.
package manifestdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/northgate-sc/clubweb/internal/gallery"
)

// DefaultPath is where the site serves the manifest from.
const DefaultPath = "public/gallery/manifest.json"

var (
	// ErrDocumentRead means the manifest could not be read or parsed.
	ErrDocumentRead = errors.New("manifestdoc: read failure")
	// ErrDocumentWrite means the mutated manifest could not be persisted.
	ErrDocumentWrite = errors.New("manifestdoc: write failure")
)

// Document is a manifest file on disk.
type Document struct {
	Path string
	// Missing documents are treated as empty when true; the add command relies on this.
	CreateIfMissing bool
}

// Open returns a Document for path.
func Open(path string) *Document {
	if path == "" {
		path = DefaultPath
	}
	return &Document{Path: path, CreateIfMissing: true}
}

// Load reads and parses the document.
func (d *Document) Load() (*gallery.Manifest, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && d.CreateIfMissing {
			return gallery.NewManifest(), nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentRead, d.Path, err)
	}
	m, err := gallery.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentRead, d.Path, err)
	}
	return m, nil
}

// Save writes m over the document atomically; on failure the previous file is left intact.
func (d *Document) Save(m *gallery.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDocumentWrite, d.Path, err)
	}
	if err := atomic.WriteFile(d.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDocumentWrite, d.Path, err)
	}
	return nil
}

// Update runs fn against the loaded manifest and saves it only when fn reports a change.
// Errors from fn abort the transaction without writing.
func (d *Document) Update(fn func(*gallery.Manifest) (bool, error)) error {
	m, err := d.Load()
	if err != nil {
		return err
	}
	changed, err := fn(m)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return d.Save(m)
}

// Encode renders the manifest with two-space indentation and a trailing newline.
func Encode(m *gallery.Manifest) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
