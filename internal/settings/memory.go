package settings

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// MemoryStore keeps settings in memory only. It is the default store, so the
// relay runs with zero configuration; nothing survives a restart.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]json.RawMessage)}
}

// Get decodes the stored value for key into out.
func (s *MemoryStore) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return fmt.Errorf("%w: %s", contracts.ErrSettingNotFound, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode setting %q: %w", key, err)
	}
	return nil
}

// Set stores a copy of the value. Values round-trip through JSON so callers
// cannot alias the stored data.
func (s *MemoryStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}
