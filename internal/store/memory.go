package store

import (
	"encoding/json"
	"sync"
)

// MemoryStore is a Store held in process memory. Values are JSON encoded so
// it behaves like the persistent store.
type MemoryStore struct {
	kvStore
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{values: make(map[string][]byte)}
	s.kvStore = newKVStore(s, opts)
	return s
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) get(key string, dest any) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (s *MemoryStore) set(values map[string]any) error {
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded[key] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, data := range encoded {
		s.values[key] = data
	}
	return nil
}
