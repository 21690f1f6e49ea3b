package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/northgate-sc/clubweb/internal/gallery"
	"github.com/northgate-sc/clubweb/internal/lightbox"
)

const galleryPath = "/gallery"

// GalleryFilter is one filter chip.
type GalleryFilter struct {
	Name   string
	Slug   string
	Href   string
	Count  int
	Active bool
}

// GalleryImage is one thumbnail of the current view.
type GalleryImage struct {
	Index    int
	Category string
	Filename string
	URL      string
	// Href opens the lightbox on this image.
	Href string
}

// LightboxView is the enlarged image panel.
type LightboxView struct {
	Open      bool
	Image     GalleryImage
	Position  int // 1-based
	Size      int
	PrevHref  string
	NextHref  string
	CloseHref string
}

// GalleryView is the gallery page body.
type GalleryView struct {
	Category    string
	Filters     []GalleryFilter
	Images      []GalleryImage
	Lightbox    LightboxView
	Unavailable bool
}

// Empty reports a loaded gallery with nothing to show for the filter.
func (g GalleryView) Empty() bool { return !g.Unavailable && len(g.Images) == 0 }

// NormalizeCategory maps the category query value to the slug used in links: "all" for empty
// or "all", the fixed category slug when it names one, otherwise the trimmed input.
func NormalizeCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	if gallery.IsAll(raw) {
		return gallery.All
	}
	if c, ok := gallery.ParseCategory(raw); ok {
		return c.Slug()
	}
	return raw
}

// ParsePhoto reads the lightbox index; anything but a non-negative integer keeps it closed.
func ParsePhoto(raw string) int {
	if raw == "" {
		return -1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// ImageURL returns base/<category>/<filename>. Filenames are only unique within a category.
func ImageURL(base, category, filename string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(category) + "/" + url.PathEscape(filename)
}

// GalleryHref links to the gallery filtered by category, with the lightbox on photo when
// photo >= 0.
func GalleryHref(category string, photo int) string {
	q := url.Values{}
	if category != "" && category != gallery.All {
		q.Set("category", category)
	}
	if photo >= 0 {
		q.Set("photo", strconv.Itoa(photo))
	}
	if len(q) == 0 {
		return galleryPath
	}
	return galleryPath + "?" + q.Encode()
}

// BuildGallery assembles the gallery body for a filtered view. photo < 0 leaves the lightbox
// closed; out-of-range indexes are clamped.
func BuildGallery(entries []gallery.Entry, counts []gallery.Count, category string, photo int, imageBase string) GalleryView {
	category = NormalizeCategory(category)
	view := GalleryView{
		Category: category,
		Filters:  buildFilters(counts, category),
		Images:   make([]GalleryImage, 0, len(entries)),
	}
	for i, e := range entries {
		view.Images = append(view.Images, GalleryImage{
			Index:    i,
			Category: e.Category,
			Filename: e.Filename,
			URL:      ImageURL(imageBase, e.Category, e.Filename),
			Href:     GalleryHref(category, i),
		})
	}

	state := lightbox.Closed(len(view.Images))
	if photo >= 0 {
		state = lightbox.Open(len(view.Images), photo)
	}
	if state.IsOpen() {
		view.Lightbox = LightboxView{
			Open:      true,
			Image:     view.Images[state.Index],
			Position:  state.Index + 1,
			Size:      state.Size,
			PrevHref:  GalleryHref(category, state.Prev().Index),
			NextHref:  GalleryHref(category, state.Next().Index),
			CloseHref: GalleryHref(category, state.Close().Index),
		}
	}
	return view
}

// UnavailableGallery is the body shown while no manifest could be loaded.
func UnavailableGallery(category string) GalleryView {
	return GalleryView{Category: NormalizeCategory(category), Unavailable: true}
}

func buildFilters(counts []gallery.Count, active string) []GalleryFilter {
	out := make([]GalleryFilter, 0, len(counts))
	for _, c := range counts {
		out = append(out, GalleryFilter{
			Name:   c.Name,
			Slug:   c.Slug,
			Href:   GalleryHref(c.Slug, -1),
			Count:  c.Count,
			Active: strings.EqualFold(c.Slug, active),
		})
	}
	return out
}

// APIImage is one image of the JSON gallery response.
type APIImage struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// APIGallery is the JSON gallery response.
type APIGallery struct {
	Category string          `json:"category"`
	Images   []APIImage      `json:"images"`
	Counts   []gallery.Count `json:"counts"`
}

// BuildAPIGallery converts a view into its JSON form.
func BuildAPIGallery(entries []gallery.Entry, counts []gallery.Count, category, imageBase string) APIGallery {
	out := APIGallery{
		Category: NormalizeCategory(category),
		Images:   make([]APIImage, 0, len(entries)),
		Counts:   counts,
	}
	for _, e := range entries {
		out.Images = append(out.Images, APIImage{Category: e.Category, Filename: e.Filename, URL: ImageURL(imageBase, e.Category, e.Filename)})
	}
	return out
}
