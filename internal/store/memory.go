package store

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/lexnav/internal/model"
)

const latestKey = "lexnav:latest"

// MemoryStore keeps the slot in process memory with no expiration. It backs
// the layered store's fast path and stands alone in tests.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

// PutLatest replaces the slot.
func (s *MemoryStore) PutLatest(result *model.TraversalResult) error {
	s.cache.Set(latestKey, result, gocache.NoExpiration)
	return nil
}

// Latest returns the slot contents, or nil when empty.
func (s *MemoryStore) Latest() (*model.TraversalResult, error) {
	if val, found := s.cache.Get(latestKey); found {
		return val.(*model.TraversalResult), nil
	}
	return nil, nil
}

// Clear empties the slot.
func (s *MemoryStore) Clear() error {
	s.cache.Delete(latestKey)
	return nil
}
