// Package sessionstore keeps small per-session values on the server, keyed by the id carried
// in the session cookie. Values expire after an idle TTL.
package sessionstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/northgate-sc/clubweb/internal/gallery"
)

// DefaultTTL is how long a session's values survive without being read or written.
const DefaultTTL = 12 * time.Hour

// ErrNoSession is returned when a value is written without a session id.
var ErrNoSession = errors.New("sessionstore: missing session id")

// Backend persists values per (session id, key).
type Backend interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
	Close() error
}

// Scope binds a backend to one session so it can serve as the gallery's session storage.
func Scope(b Backend, sessionID string) gallery.Store {
	return scoped{backend: b, sessionID: strings.TrimSpace(sessionID)}
}

type scoped struct {
	backend   Backend
	sessionID string
}

func (s scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.sessionID == "" {
		return nil, false, nil
	}
	return s.backend.Get(ctx, s.sessionID, key)
}

func (s scoped) Set(ctx context.Context, key string, value []byte) error {
	if s.sessionID == "" {
		return ErrNoSession
	}
	return s.backend.Set(ctx, s.sessionID, key, value)
}

// Option customises backends.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL sets the idle lifetime of stored values.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
