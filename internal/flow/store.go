package flow

import (
	"sync"
)

// SharedStore is the data-exchange mechanism between nodes in a flow. Every
// node reads its inputs from the store during Prep and writes its outputs
// back during Post.
type SharedStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewSharedStore creates an empty shared store.
func NewSharedStore() *SharedStore {
	return &SharedStore{data: make(map[string]any)}
}

// Set stores a value under the given key.
func (s *SharedStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get returns the value for the key and whether it was present.
func (s *SharedStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString returns the string value for the key, or the fallback when the
// key is absent or not a string.
func (s *SharedStore) GetString(key, fallback string) string {
	v, ok := s.Get(key)
	if !ok {
		return fallback
	}
	str, ok := v.(string)
	if !ok {
		return fallback
	}
	return str
}

// Append adds a value to the slice stored under key, creating it on first use.
func (s *SharedStore) Append(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, _ := s.data[key].([]any)
	s.data[key] = append(existing, value)
}

// Keys returns all keys currently in the store.
func (s *SharedStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
