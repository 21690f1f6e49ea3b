package manifestdoc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/northgate-sc/clubweb/internal/gallery"
)

// ErrInvalidCategory is returned for categories outside the fixed set.
var ErrInvalidCategory = errors.New("invalid category")

// InvalidCategoryError names the rejected input and, when one is close, the category the
// operator probably meant.
type InvalidCategoryError struct {
	Input      string
	Suggestion gallery.Category
}

func (e *InvalidCategoryError) Error() string {
	valid := make([]string, 0, len(gallery.Categories()))
	for _, c := range gallery.Categories() {
		valid = append(valid, string(c))
	}
	msg := fmt.Sprintf("invalid category %q (valid: %s)", e.Input, strings.Join(valid, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

// Is lets errors.Is match ErrInvalidCategory.
func (e *InvalidCategoryError) Is(target error) bool { return target == ErrInvalidCategory }

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 2

// ValidateCategory resolves name to a fixed category ignoring case.
func ValidateCategory(name string) (gallery.Category, error) {
	if c, ok := gallery.ParseCategory(name); ok {
		return c, nil
	}
	e := &InvalidCategoryError{Input: name}
	best := maxSuggestDistance + 1
	for _, c := range gallery.Categories() {
		d := fuzzy.LevenshteinDistance(strings.ToLower(strings.TrimSpace(name)), c.Slug())
		if d < best {
			best = d
			e.Suggestion = c
		}
	}
	return "", e
}

// CategoryCount is one line of the list report.
type CategoryCount struct {
	Category string
	Count    int
}

// Listing is the result of List.
type Listing struct {
	Categories []CategoryCount
	Total      int
}

// List reports counts for every fixed category, followed by any other keys in document order.
func List(m *gallery.Manifest) Listing {
	var out Listing
	seen := map[string]bool{}
	for _, c := range gallery.Categories() {
		key, files, ok := m.Lookup(string(c))
		if ok {
			seen[key] = true
		}
		out.Categories = append(out.Categories, CategoryCount{Category: string(c), Count: len(files)})
	}
	for _, key := range m.Keys() {
		if seen[key] {
			continue
		}
		out.Categories = append(out.Categories, CategoryCount{Category: key, Count: m.Count(key)})
	}
	out.Total = m.Total()
	return out
}

// Result describes what an add or remove did.
type Result int

const (
	Unchanged Result = iota
	Added
	AlreadyExists
	Removed
	NotFound
)

func (r Result) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyExists:
		return "already exists"
	case Removed:
		return "removed"
	case NotFound:
		return "not found"
	default:
		return "unchanged"
	}
}

// storedKey finds the manifest key for c, tolerating keys written in another case.
func storedKey(m *gallery.Manifest, c gallery.Category) (string, bool) {
	key, _, ok := m.Lookup(string(c))
	return key, ok
}

// Add appends filename to category unless it is already there. A missing category is created.
func Add(m *gallery.Manifest, category, filename string) (Result, error) {
	c, err := ValidateCategory(category)
	if err != nil {
		return Unchanged, err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return Unchanged, errors.New("filename is required")
	}
	key, ok := storedKey(m, c)
	if !ok {
		key = string(c)
		m.Set(key, []string{})
	}
	files := m.Files(key)
	if slices.Contains(files, filename) {
		return AlreadyExists, nil
	}
	m.Set(key, append(files, filename))
	return Added, nil
}

// Remove deletes the first occurrence of filename from category.
func Remove(m *gallery.Manifest, category, filename string) (Result, error) {
	c, err := ValidateCategory(category)
	if err != nil {
		return Unchanged, err
	}
	key, ok := storedKey(m, c)
	if !ok {
		return NotFound, nil
	}
	files := m.Files(key)
	i := slices.Index(files, strings.TrimSpace(filename))
	if i < 0 {
		return NotFound, nil
	}
	m.Set(key, slices.Delete(files, i, i+1))
	return Removed, nil
}

// Add runs Add as a document transaction; nothing is written unless a file was added.
func (d *Document) Add(category, filename string) (Result, error) {
	var res Result
	err := d.Update(func(m *gallery.Manifest) (bool, error) {
		var err error
		res, err = Add(m, category, filename)
		return res == Added, err
	})
	return res, err
}

// Remove runs Remove as a document transaction; nothing is written unless a file was removed.
func (d *Document) Remove(category, filename string) (Result, error) {
	var res Result
	err := d.Update(func(m *gallery.Manifest) (bool, error) {
		var err error
		res, err = Remove(m, category, filename)
		return res == Removed, err
	})
	return res, err
}

// List loads the document and reports its counts.
func (d *Document) List() (Listing, error) {
	m, err := d.Load()
	if err != nil {
		return Listing{}, err
	}
	return List(m), nil
}

// Shuffle permutes every category of the document and writes it back.
func (d *Document) Shuffle(intn gallery.IntN) (Listing, error) {
	var out Listing
	err := d.Update(func(m *gallery.Manifest) (bool, error) {
		ShuffleAll(m, intn)
		out = List(m)
		return true, nil
	})
	return out, err
}

// ShuffleAll permutes every category independently in place. This changes the canonical order
// that future sessions flatten from; it is unrelated to the per-session order.
func ShuffleAll(m *gallery.Manifest, intn gallery.IntN) {
	for _, key := range m.Keys() {
		files := m.Files(key)
		gallery.Shuffle(files, intn)
		m.Set(key, files)
	}
}
