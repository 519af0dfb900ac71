package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. It backs tests and acts as
// the fallback behind FailoverStore.
type MemoryStore struct {
	snapshots sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, ok := s.snapshots.Load(key)
	if !ok {
		return nil, ErrNoSnapshot
	}
	stored := val.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	s.snapshots.Store(key, stored)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.snapshots.Delete(key)
	return nil
}
