package sessionstore

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend keeps values in process memory. It is lost on restart, which only means
// visitors get a fresh shuffle.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]map[string]memoryRecord
	opts     options
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend(opts ...Option) *MemoryBackend {
	return &MemoryBackend{
		sessions: make(map[string]map[string]memoryRecord),
		opts:     applyOptions(opts),
	}
}

// Get implements Backend. A hit pushes the expiry out by another TTL.
func (b *MemoryBackend) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	now := b.opts.now().UTC()
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.sessions[sessionID][key]
	if !ok || !now.Before(rec.expiresAt) {
		return nil, false, nil
	}
	rec.expiresAt = now.Add(b.opts.ttl)
	b.sessions[sessionID][key] = rec
	return append([]byte(nil), rec.value...), true, nil
}

// Set implements Backend.
func (b *MemoryBackend) Set(_ context.Context, sessionID, key string, value []byte) error {
	if sessionID == "" {
		return ErrNoSession
	}
	now := b.opts.now().UTC()
	b.mu.Lock()
	defer b.mu.Unlock()

	values, ok := b.sessions[sessionID]
	if !ok {
		values = make(map[string]memoryRecord)
		b.sessions[sessionID] = values
	}
	values[key] = memoryRecord{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(b.opts.ttl),
	}
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	return nil
}

// CleanupExpired implements Backend.
func (b *MemoryBackend) CleanupExpired(_ context.Context, now time.Time, limit int) (int, error) {
	now = now.UTC()
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, values := range b.sessions {
		for key, rec := range values {
			if limit > 0 && removed >= limit {
				return removed, nil
			}
			if now.Before(rec.expiresAt) {
				continue
			}
			delete(values, key)
			removed++
		}
		if len(values) == 0 {
			delete(b.sessions, id)
		}
	}
	return removed, nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error { return nil }
