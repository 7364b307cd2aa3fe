package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

// MemoryStore keeps documents in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Exists implements [Store].
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	if err := mcerrors.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[key]
	return ok, nil
}

// Read implements [Store]. The returned slice is a copy.
func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	if err := mcerrors.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, notFound(key)
	}
	return append([]byte(nil), data...), nil
}

// Write implements [Store].
func (s *MemoryStore) Write(_ context.Context, key string, data []byte) error {
	if err := mcerrors.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
	return nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// List implements [Store].
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close does nothing for memory storage.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
