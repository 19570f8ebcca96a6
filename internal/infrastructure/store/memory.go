package store

import (
	"context"
	"sync"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// MemoryStore is a thread-safe in-memory BlobStore. Values are lost on exit.
type MemoryStore struct {
	data  map[string]string
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// Load returns the value saved under key
func (s *MemoryStore) Load(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return "", domain.ErrBlobNotFound
	}
	return value, nil
}

// Save replaces the value under key
func (s *MemoryStore) Save(ctx context.Context, key string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = value
	return nil
}

// Size returns the number of stored keys
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
