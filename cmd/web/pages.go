package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/content"
	"github.com/northgate-sc/clubweb/internal/format"
	handlersPkg "github.com/northgate-sc/clubweb/internal/handlers"
	mw "github.com/northgate-sc/clubweb/internal/middleware"
	"github.com/northgate-sc/clubweb/internal/observability"
	"github.com/northgate-sc/clubweb/internal/seo"
)

var legalSlugs = map[string]bool{"privacy": true, "imprint": true, "terms": true}

// HomeHandler renders the landing page from content/<lang>/home.md.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	vm := handlersPkg.NewPageData(a.site, lang, "/")
	vm.Template = "home"
	vm.Breadcrumbs = nil

	title := a.site.Name
	desc := a.i18nOrDefault(lang, "home.description", "")
	page, err := a.pages.Get(r.Context(), "", "home", lang)
	switch {
	case err == nil:
		vm.Content = &page
		if page.Summary != "" {
			desc = page.Summary
		}
	case errors.Is(err, content.ErrNotFound):
	default:
		observability.FromContext(r.Context()).Warn("load home content", zap.Error(err))
	}
	vm.SetTitle(title, desc)
	vm.AddJSONLD(seo.SportsOrganization(a.site.Club()))
	vm.AddJSONLD(seo.WebSite(a.site.Name, a.site.BaseURL, lang))
	a.renderPage(w, r, http.StatusOK, vm)
}

// ContentPageHandler renders content/<lang>/<slug>.md at /<slug>.
func (a *app) ContentPageHandler(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.serveContent(w, r, "", slug)
	}
}

// LegalHandler renders the legal pages under /legal/{slug}.
func (a *app) LegalHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !legalSlugs[slug] {
		a.NotFoundHandler(w, r)
		return
	}
	a.serveContent(w, r, "legal", slug)
}

func (a *app) serveContent(w http.ResponseWriter, r *http.Request, kind, slug string) {
	lang := mw.Lang(r)
	page, err := a.pages.Get(r.Context(), kind, slug, lang)
	if errors.Is(err, content.ErrNotFound) {
		a.NotFoundHandler(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("load content page", zap.String("slug", slug), zap.Error(err))
		a.renderError(w, r, http.StatusInternalServerError, "error.internal")
		return
	}

	vm := handlersPkg.BuildContentPage(a.site, lang, r.URL.Path, page)
	if !page.UpdatedAt.IsZero() {
		vm.AddJSONLD(seo.Article(page.Title, vm.SEO.Canonical, page.Lang, format.ISODate(page.UpdatedAt)))
	}
	vm.AddJSONLD(vm.BreadcrumbJSONLD(func(key string) string { return a.bundle.T(lang, key) }))
	a.renderPage(w, r, http.StatusOK, vm)
}

// NotFoundHandler renders the localized 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	a.renderError(w, r, http.StatusNotFound, "error.not_found")
}

func (a *app) renderError(w http.ResponseWriter, r *http.Request, status int, key string) {
	lang := mw.Lang(r)
	vm := handlersPkg.NewPageData(a.site, lang, r.URL.Path)
	vm.Template = "error"
	vm.Breadcrumbs = nil
	vm.Error = &handlersPkg.ErrorView{Status: status, MessageKey: key + ".message"}
	vm.SetTitle(a.i18nOrDefault(lang, key+".title", http.StatusText(status)), "")
	vm.SEO.Robots = "noindex"
	a.renderPage(w, r, status, vm)
}
