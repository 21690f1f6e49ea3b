package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/gallery"
	handlersPkg "github.com/northgate-sc/clubweb/internal/handlers"
	"github.com/northgate-sc/clubweb/internal/manifestdoc"
	mw "github.com/northgate-sc/clubweb/internal/middleware"
	"github.com/northgate-sc/clubweb/internal/observability"
	"github.com/northgate-sc/clubweb/internal/seo"
	"github.com/northgate-sc/clubweb/internal/sessionstore"
)

var tracer = otel.Tracer("github.com/northgate-sc/clubweb/cmd/web")

// galleryView resolves the filtered entries and the chip counts for the request's session.
func (a *app) galleryView(r *http.Request, category string) ([]gallery.Entry, []gallery.Count, error) {
	ctx, span := tracer.Start(r.Context(), "gallery.view")
	defer span.End()
	span.SetAttributes(attribute.String("gallery.category", observability.SanitizeValue(category)))

	store := sessionstore.Scope(a.sessions, mw.SessionID(r))
	entries, err := a.gallery.CategoryView(ctx, store, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "manifest unavailable")
		return nil, nil, err
	}
	counts, err := a.gallery.CategoryCounts()
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("gallery.images", len(entries)))
	return entries, counts, nil
}

// GalleryHandler renders the filterable gallery with its lightbox.
func (a *app) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	q := r.URL.Query()
	category := q.Get("category")

	vm := handlersPkg.NewPageData(a.site, lang, r.URL.Path)
	vm.Template = "gallery"
	vm.SetTitle(a.i18nOrDefault(lang, "gallery.title", "Gallery"), a.i18nOrDefault(lang, "gallery.description", ""))

	status := http.StatusOK
	entries, counts, err := a.galleryView(r, category)
	if err != nil {
		observability.FromContext(r.Context()).Warn("gallery unavailable", zap.Error(err))
		view := handlersPkg.UnavailableGallery(category)
		vm.Gallery = &view
		vm.SEO.Robots = "noindex"
		status = http.StatusServiceUnavailable
	} else {
		view := handlersPkg.BuildGallery(entries, counts, category, handlersPkg.ParsePhoto(q.Get("photo")), a.cfg.Gallery.ImageBaseURL)
		vm.Gallery = &view
		if view.Category != gallery.All {
			vm.SEO.Canonical = a.site.AbsURL(handlersPkg.GalleryHref(view.Category, -1))
			vm.SEO.OG.URL = vm.SEO.Canonical
		}
		if view.Lightbox.Open {
			// Lightbox URLs duplicate the grid.
			vm.SEO.Robots = "noindex,follow"
		}
		images := make([]seo.Image, 0, len(view.Images))
		for _, img := range view.Images {
			images = append(images, seo.Image{URL: a.site.AbsURL(img.URL), Caption: img.Category})
		}
		vm.AddJSONLD(seo.ImageGallery(vm.Title, vm.SEO.Canonical, images))
	}
	vm.AddJSONLD(vm.BreadcrumbJSONLD(func(key string) string { return a.bundle.T(lang, key) }))
	a.renderPage(w, r, status, vm)
}

// GalleryAPIHandler serves the filtered view as JSON.
func (a *app) GalleryAPIHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	entries, counts, err := a.galleryView(r, category)
	if err != nil {
		mw.WriteJSONError(w, http.StatusServiceUnavailable, "manifest_unavailable", "the gallery is temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, handlersPkg.BuildAPIGallery(entries, counts, category, a.cfg.Gallery.ImageBaseURL))
}

// GalleryCountsHandler serves the filter chip counts as JSON.
func (a *app) GalleryCountsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := a.gallery.CategoryCounts()
	if err != nil {
		mw.WriteJSONError(w, http.StatusServiceUnavailable, "manifest_unavailable", "the gallery is temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// ManifestHandler serves the live manifest snapshot at its well-known static path.
func (a *app) ManifestHandler(w http.ResponseWriter, r *http.Request) {
	m, err := a.gallery.Manifest()
	if err != nil {
		mw.WriteJSONError(w, http.StatusServiceUnavailable, "manifest_unavailable", "the gallery manifest could not be loaded")
		return
	}
	body, err := manifestdoc.Encode(m)
	if err != nil {
		observability.FromContext(r.Context()).Error("encode manifest", zap.Error(err))
		mw.WriteJSONError(w, http.StatusInternalServerError, "internal_server_error", "internal server error")
		return
	}
	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
