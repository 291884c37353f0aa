package store

import (
	"github.com/ppiankov/lexnav/internal/model"
)

// LayeredStore fronts the disk slot with a memory slot. Reads hit memory
// first and promote a disk hit; writes commit to disk before memory so a
// successful write is durable.
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates a layered store persisting under dir.
func NewLayeredStore(dir string) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(),
		disk:   NewDiskStore(dir),
	}
}

// PutLatest replaces the slot in both layers.
func (s *LayeredStore) PutLatest(result *model.TraversalResult) error {
	if err := s.disk.PutLatest(result); err != nil {
		return err
	}
	return s.memory.PutLatest(result)
}

// Latest returns the most recent result, or nil when both layers are empty.
func (s *LayeredStore) Latest() (*model.TraversalResult, error) {
	if result, err := s.memory.Latest(); err == nil && result != nil {
		return result, nil
	}
	result, err := s.disk.Latest()
	if err != nil {
		return nil, err
	}
	if result != nil {
		_ = s.memory.PutLatest(result)
	}
	return result, nil
}

// Clear empties both layers.
func (s *LayeredStore) Clear() error {
	if err := s.memory.Clear(); err != nil {
		return err
	}
	return s.disk.Clear()
}
