package gallery

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/northgate-sc/clubweb/internal/gallery")

// Count is the number of images behind one filter chip.
type Count struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Randomizer serves gallery views from a manifest snapshot. The "all" view is shuffled once per
// session and persisted in the session Store; category views keep manifest order.
type Randomizer struct {
	mu       sync.RWMutex
	manifest *Manifest
	loadErr  error

	intn   IntN
	logger *zap.Logger
}

// Option customises a Randomizer.
type Option func(*Randomizer)

// WithIntN replaces the random source used for shuffling.
func WithIntN(intn IntN) Option {
	return func(r *Randomizer) {
		if intn != nil {
			r.intn = intn
		}
	}
}

// WithLogger sets the logger used for recovered storage problems.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Randomizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithManifest seeds the randomizer with an already loaded manifest.
func WithManifest(m *Manifest) Option {
	return func(r *Randomizer) {
		if m != nil {
			r.manifest = m.Clone()
		}
	}
}

// NewRandomizer builds a Randomizer. Until a manifest is set or loaded every view fails with
// ErrManifestUnavailable.
func NewRandomizer(opts ...Option) *Randomizer {
	r := &Randomizer{
		intn:   DefaultIntN,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the manifest from src and installs it. A failed load keeps any previous snapshot;
// without one the gallery stays unavailable.
func (r *Randomizer) Load(ctx context.Context, src Source) error {
	m, err := LoadManifest(ctx, src)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		if r.manifest == nil {
			r.loadErr = err
		}
		return err
	}
	r.manifest = m
	r.loadErr = nil
	return nil
}

// SetManifest installs m as the current snapshot. Persisted session orders are left alone.
func (r *Randomizer) SetManifest(m *Manifest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifest = m.Clone()
	r.loadErr = nil
}

// Manifest returns a copy of the current snapshot.
func (r *Randomizer) Manifest() (*Manifest, error) {
	m, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

func (r *Randomizer) snapshot() (*Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.manifest == nil {
		if r.loadErr != nil {
			return nil, r.loadErr
		}
		return nil, ErrManifestUnavailable
	}
	return r.manifest, nil
}

// AllView returns the session's shuffled order, computing and persisting it on first use.
func (r *Randomizer) AllView(ctx context.Context, store Store) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "gallery.AllView")
	defer span.End()

	m, err := r.snapshot()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if store != nil {
		if entries, ok := r.storedOrder(ctx, store); ok {
			span.SetAttributes(attribute.Bool("gallery.order.cached", true), attribute.Int("gallery.order.size", len(entries)))
			return entries, nil
		}
	}

	entries := m.Flatten()
	Shuffle(entries, r.intn)
	span.SetAttributes(attribute.Bool("gallery.order.cached", false), attribute.Int("gallery.order.size", len(entries)))

	if store != nil {
		raw, err := encodeOrder(entries)
		if err == nil {
			err = store.Set(ctx, OrderKey, raw)
		}
		if err != nil {
			// The order is still valid for this response; the next request reshuffles.
			r.logger.Warn("persist session order failed", zap.Error(err))
		}
	}
	return entries, nil
}

func (r *Randomizer) storedOrder(ctx context.Context, store Store) ([]Entry, bool) {
	raw, ok, err := store.Get(ctx, OrderKey)
	if err != nil {
		r.logger.Warn("read session order failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	entries, err := decodeOrder(raw)
	if err != nil {
		r.logger.Debug("discarding stored session order", zap.Error(err))
		return nil, false
	}
	return entries, true
}

// CategoryView returns the images for filter. "all" (or empty) delegates to AllView; any other
// value is matched against manifest keys ignoring case and returned in manifest order. Unknown
// categories yield an empty, non-nil slice.
func (r *Randomizer) CategoryView(ctx context.Context, store Store, filter string) ([]Entry, error) {
	if IsAll(filter) {
		return r.AllView(ctx, store)
	}
	m, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	key, files, ok := m.Lookup(filter)
	if !ok {
		return []Entry{}, nil
	}
	out := make([]Entry, 0, len(files))
	for _, f := range files {
		out = append(out, Entry{Category: key, Filename: f})
	}
	return out, nil
}

// CategoryCounts reports the "all" aggregate followed by every fixed category, zero when absent.
func (r *Randomizer) CategoryCounts() ([]Count, error) {
	m, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]Count, 0, len(categories)+1)
	out = append(out, Count{Name: All, Slug: All, Count: m.Total()})
	for _, c := range categories {
		_, files, _ := m.Lookup(string(c))
		out = append(out, Count{Name: string(c), Slug: c.Slug(), Count: len(files)})
	}
	return out, nil
}
