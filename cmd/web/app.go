package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/config"
	"github.com/northgate-sc/clubweb/internal/content"
	"github.com/northgate-sc/clubweb/internal/gallery"
	handlersPkg "github.com/northgate-sc/clubweb/internal/handlers"
	"github.com/northgate-sc/clubweb/internal/i18n"
	mw "github.com/northgate-sc/clubweb/internal/middleware"
	"github.com/northgate-sc/clubweb/internal/observability"
	"github.com/northgate-sc/clubweb/internal/sessionstore"
)

const requestTimeout = 30 * time.Second

// app holds the dependencies shared by all handlers.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	pages     *content.Store
	gallery   *gallery.Randomizer
	source    gallery.Source
	sessions  sessionstore.Backend
	cookies   *mw.Sessions
	limiter   *mw.RateLimiter
	templates *templateSet
	site      handlersPkg.Site
	analytics handlersPkg.Analytics

	closers []func() error
	watcher *gallery.Watcher
	wg      sync.WaitGroup
}

// newApp wires the site from cfg. A manifest that fails to load is logged and leaves the
// gallery unavailable; everything else must succeed.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		limiter:   mw.NewRateLimiter(cfg.API.RatePerSecond, cfg.API.Burst),
		analytics: handlersPkg.LoadAnalyticsFromEnv(),
	}

	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.I18N.Fallback, cfg.I18N.Supported)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	a.bundle = bundle
	a.site = handlersPkg.Site{
		Name:      cfg.Site.Name,
		BaseURL:   cfg.Site.BaseURL,
		Sport:     cfg.Site.Sport,
		Logo:      cfg.Site.Logo,
		SameAs:    cfg.Site.SameAs,
		Languages: bundle.Supported(),
	}

	a.templates, err = newTemplateSet(cfg.Paths.Templates, cfg.Server.Dev, a.funcMap())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	a.pages = content.NewStore(cfg.Paths.Content, cfg.I18N.Fallback)

	switch cfg.Session.Backend {
	case "sqlite":
		b, err := sessionstore.OpenSQLite(cfg.Session.SQLitePath, sessionstore.WithTTL(cfg.Session.IdleTTL))
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		a.sessions = b
	default:
		a.sessions = sessionstore.NewMemoryBackend(sessionstore.WithTTL(cfg.Session.IdleTTL))
	}
	a.closers = append(a.closers, a.sessions.Close)

	hashKey, blockKey := cfg.SessionKeys()
	a.cookies = mw.NewSessions(hashKey, blockKey, cfg.Session.SecureCookie, logger.Named("session"))

	a.gallery = gallery.NewRandomizer(gallery.WithLogger(logger.Named("gallery")))
	if err := a.loadManifest(ctx); err != nil {
		logger.Error("gallery manifest unavailable", zap.String("source", cfg.Gallery.Manifest), zap.Error(err))
	}
	return a, nil
}

func (a *app) loadManifest(ctx context.Context) error {
	src, err := gallery.ParseSource(a.cfg.Gallery.Manifest)
	if err != nil {
		return err
	}
	if gcs, ok := src.(*gallery.GCSSource); ok {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("storage client: %w", err)
		}
		gcs.Client = client
		a.closers = append(a.closers, client.Close)
	}
	a.source = src
	return a.gallery.Load(ctx, src)
}

// start launches the background workers. They stop when ctx is cancelled and close waits
// for them.
func (a *app) start(ctx context.Context) {
	if fs, ok := a.source.(gallery.FileSource); ok && a.cfg.Gallery.Watch {
		w, err := gallery.NewWatcher(string(fs), a.gallery, gallery.WithWatcherLogger(a.logger.Named("gallery.watch")))
		if err != nil {
			a.logger.Warn("manifest watcher disabled", zap.Error(err))
		} else {
			w.Start(ctx)
			a.watcher = w
		}
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.limiter.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.cleanupSessions(ctx)
	}()
}

func (a *app) cleanupSessions(ctx context.Context) {
	interval := a.cfg.Session.CleanupInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := a.sessions.CleanupExpired(ctx, now, a.cfg.Session.CleanupBatch)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("session cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Debug("expired session values removed", zap.Int("count", n))
			}
		}
	}
}

func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("close manifest watcher", zap.Error(err))
		}
	}
	a.wg.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", zap.Error(err))
		}
	}
}

// routes builds the chi router for the whole site.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.TraceMiddleware)
	r.Use(mw.Logger(a.logger))
	r.Use(mw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", HealthHandler)

	public := a.cfg.Paths.Public
	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(public, "assets"),
		mw.StaticOptions{MaxAge: 24 * time.Hour, ETags: !a.cfg.Server.Dev}))
	r.Handle("/gallery/images/*", mw.AssetsWithCache("/gallery/images", filepath.Join(public, "gallery", "images"),
		mw.StaticOptions{MaxAge: 7 * 24 * time.Hour}))
	r.Get("/gallery/manifest.json", a.ManifestHandler)

	r.Group(func(r chi.Router) {
		r.Use(a.cookies.Handler)
		r.Use(mw.Locale(a.bundle))
		r.Use(mw.VaryLocale)

		r.Get("/", a.HomeHandler)
		for _, slug := range []string{"about", "team", "schedule", "contact"} {
			r.Get("/"+slug, a.ContentPageHandler(slug))
		}
		r.Get("/legal/{slug}", a.LegalHandler)
		r.Get("/gallery", a.GalleryHandler)
		r.NotFound(a.NotFoundHandler)
	})

	r.Route("/api", func(r chi.Router) {
		if origins := a.cfg.API.AllowedOrigins; len(origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: origins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Use(a.limiter.Handler)
		r.Use(a.cookies.Handler)
		r.Get("/gallery", a.GalleryAPIHandler)
		r.Get("/gallery/counts", a.GalleryCountsHandler)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			mw.WriteJSONError(w, http.StatusNotFound, "not_found", "no such endpoint")
		})
	})
	return r
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
