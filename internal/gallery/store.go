package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// OrderKey is the fixed session storage key holding the shuffled order.
const OrderKey = "gallery.order"

var (
	// ErrManifestUnavailable means the manifest could not be fetched or did not parse.
	ErrManifestUnavailable = errors.New("gallery: manifest unavailable")
	// ErrCorruptSessionOrder means a persisted order could not be decoded.
	ErrCorruptSessionOrder = errors.New("gallery: corrupt session order")
)

// Store is key/value storage scoped to one browsing session.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MapStore is an in-process Store for a single session, mainly for tests and tools.
type MapStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{values: map[string][]byte{}}
}

// Get implements Store.
func (s *MapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements Store.
func (s *MapStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Clear drops every value, like the end of a browser session.
func (s *MapStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string][]byte{}
}

func encodeOrder(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func decodeOrder(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSessionOrder, err)
	}
	if entries == nil {
		// "null" is not an order we wrote.
		return nil, fmt.Errorf("%w: null order", ErrCorruptSessionOrder)
	}
	for i, e := range entries {
		if e.Category == "" || e.Filename == "" {
			return nil, fmt.Errorf("%w: blank entry at %d", ErrCorruptSessionOrder, i)
		}
	}
	return entries, nil
}
