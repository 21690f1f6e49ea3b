package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/format"
	handlersPkg "github.com/northgate-sc/clubweb/internal/handlers"
	"github.com/northgate-sc/clubweb/internal/observability"
)

// templateSet holds one parsed tree per page: the shared layout and partials plus
// pages/<name>.tmpl. In dev mode the tree is reparsed on every lookup.
type templateSet struct {
	dir   string
	dev   bool
	funcs template.FuncMap
	pages map[string]*template.Template
}

func newTemplateSet(dir string, dev bool, funcs template.FuncMap) (*templateSet, error) {
	pages, err := parseTemplates(dir, funcs)
	if err != nil {
		return nil, err
	}
	return &templateSet{dir: dir, dev: dev, funcs: funcs, pages: pages}, nil
}

func (ts *templateSet) lookup(name string) (*template.Template, error) {
	pages := ts.pages
	if ts.dev {
		p, err := parseTemplates(ts.dir, ts.funcs)
		if err != nil {
			return nil, err
		}
		pages = p
	}
	t, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return t, nil
}

// parseTemplates discovers .tmpl files recursively. Files under pages/ each get their own
// clone of the shared templates so every page can define "content".
func parseTemplates(dir string, funcs template.FuncMap) (map[string]*template.Template, error) {
	var shared, pageFiles []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		if strings.HasPrefix(filepath.ToSlash(rel), "pages/") {
			pageFiles = append(pageFiles, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 || len(pageFiles) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}

	base, err := template.New("_root").Funcs(funcs).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(file); err != nil {
			return nil, err
		}
		pages[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = clone
	}
	return pages, nil
}

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return a.bundle.T(lang, key)
		},
		"fmtCount": format.FmtCount,
		"fmtDate":  format.FmtDate,
		"isoDate":  format.ISODate,
		// JSON-LD payloads are produced by encoding/json and are safe inside <script>.
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"year":   func() int { return time.Now().Year() },
	}
}

// renderPage executes the base layout with the body chosen by vm.Template.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, vm handlersPkg.PageData) {
	vm.Analytics = a.analytics
	t, err := a.templates.lookup(vm.Template)
	if err != nil {
		a.renderFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", vm); err != nil {
		a.renderFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("render template", zap.Error(err))
	msg := "internal server error"
	if a.cfg.Server.Dev {
		msg = fmt.Sprintf("template error: %v", err)
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

// i18nOrDefault returns the translation for key, or def when the key is missing.
func (a *app) i18nOrDefault(lang, key, def string) string {
	if v := a.bundle.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}
