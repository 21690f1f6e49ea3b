// Package config loads runtime configuration for the web server from defaults, an optional
// YAML file and CLUBWEB_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CLUBWEB_"

const (
	defaultAddr            = ":8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultSessionTTL      = 12 * time.Hour
	defaultCleanupInterval = 10 * time.Minute
	defaultCleanupBatch    = 500
	defaultRatePerSecond   = 5
	defaultBurst           = 20
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Site    SiteConfig    `koanf:"site"`
	Paths   PathsConfig   `koanf:"paths"`
	Gallery GalleryConfig `koanf:"gallery"`
	Session SessionConfig `koanf:"session"`
	API     APIConfig     `koanf:"api"`
	I18N    I18NConfig    `koanf:"i18n"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Dev re-parses templates on every request.
	Dev bool `koanf:"dev"`
}

// SiteConfig describes the club for page chrome and structured data.
type SiteConfig struct {
	Name    string   `koanf:"name"`
	BaseURL string   `koanf:"base_url"`
	Sport   string   `koanf:"sport"`
	Logo    string   `koanf:"logo"`
	SameAs  []string `koanf:"same_as"`
}

// PathsConfig locates on-disk resources.
type PathsConfig struct {
	Templates string `koanf:"templates"`
	Public    string `koanf:"public"`
	Content   string `koanf:"content"`
	Locales   string `koanf:"locales"`
}

// GalleryConfig configures where the manifest and images come from.
type GalleryConfig struct {
	// Manifest is a file path, http(s) URL or gs://bucket/object reference.
	Manifest string `koanf:"manifest"`
	// ImageBaseURL prefixes filenames when building image URLs.
	ImageBaseURL string `koanf:"image_base_url"`
	// Watch reloads a file manifest when it changes on disk.
	Watch bool `koanf:"watch"`
}

// SessionConfig controls the session cookie and the server-side value store.
type SessionConfig struct {
	Backend         string        `koanf:"backend"`
	SQLitePath      string        `koanf:"sqlite_path"`
	IdleTTL         time.Duration `koanf:"idle_ttl"`
	HashKey         string        `koanf:"hash_key"`
	BlockKey        string        `koanf:"block_key"`
	SecureCookie    bool          `koanf:"secure_cookie"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	CleanupBatch    int           `koanf:"cleanup_batch"`
}

// APIConfig controls the JSON gallery endpoints.
type APIConfig struct {
	RatePerSecond  float64  `koanf:"rate_per_second"`
	Burst          int      `koanf:"burst"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// I18NConfig lists the site languages.
type I18NConfig struct {
	Fallback  string   `koanf:"fallback"`
	Supported []string `koanf:"supported"`
}

// LogConfig sets the log level; empty defers to LOG_LEVEL.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            defaultAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Site: SiteConfig{
			Name:    "Northgate Sports Club",
			BaseURL: "http://localhost:8080",
			Sport:   "Football",
			Logo:    "/assets/img/logo.svg",
		},
		Paths: PathsConfig{
			Templates: "templates",
			Public:    "public",
			Content:   "content",
			Locales:   "locales",
		},
		Gallery: GalleryConfig{
			Manifest:     "public/gallery/manifest.json",
			ImageBaseURL: "/gallery/images",
			Watch:        true,
		},
		Session: SessionConfig{
			Backend:         "memory",
			SQLitePath:      "data/sessions.db",
			IdleTTL:         defaultSessionTTL,
			CleanupInterval: defaultCleanupInterval,
			CleanupBatch:    defaultCleanupBatch,
		},
		API: APIConfig{
			RatePerSecond: defaultRatePerSecond,
			Burst:         defaultBurst,
		},
		I18N: I18NConfig{
			Fallback:  "en",
			Supported: []string{"en", "de"},
		},
	}
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file     string
	useEnv   bool
	legacyPt bool
}

// WithFile loads path as YAML between defaults and the environment. A missing file is an
// error only when the path was given explicitly.
func WithFile(path string) Option {
	return func(o *loaderOptions) { o.file = path }
}

// WithoutEnv skips environment overrides.
func WithoutEnv() Option {
	return func(o *loaderOptions) { o.useEnv = false; o.legacyPt = false }
}

// Load resolves the configuration and validates it.
func Load(opts ...Option) (*Config, error) {
	options := loaderOptions{useEnv: true, legacyPt: true}
	for _, opt := range opts {
		opt(&options)
	}

	k := koanf.New(".")
	cfg := Default()

	if options.file != "" {
		if err := k.Load(file.Provider(options.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", options.file, err)
		}
	}

	if options.useEnv {
		// CLUBWEB_SESSION_SQLITE_PATH -> session.sqlite_path: only the first separator is a level.
		if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			key = strings.Replace(key, "_", ".", 1)
			if _, isList := listKeys[key]; isList {
				return key, splitList(value)
			}
			return key, value
		}), nil); err != nil {
			return nil, fmt.Errorf("loading env overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if options.legacyPt && !k.Exists("server.addr") {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			cfg.Server.Addr = ":" + port
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var listKeys = map[string]struct{}{
	"api.allowed_origins": {},
	"i18n.supported":      {},
	"site.same_as":        {},
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	c.I18N.Fallback = strings.ToLower(strings.TrimSpace(c.I18N.Fallback))
	for i, lang := range c.I18N.Supported {
		c.I18N.Supported[i] = strings.ToLower(strings.TrimSpace(lang))
	}
	c.Gallery.ImageBaseURL = strings.TrimRight(c.Gallery.ImageBaseURL, "/")
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
}
