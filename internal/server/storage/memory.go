package storage

import (
	"context"
	"sync"

	"filevault/internal/common"
)

// MemoryStore is a map-backed ContentStore for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	cid := ContentID(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[cid]; !ok {
		stored := make([]byte, len(data))
		copy(stored, data)
		s.blobs[cid] = stored
	}
	return cid, nil
}

func (s *MemoryStore) Get(ctx context.Context, cid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[cid]
	if !ok {
		return nil, common.ErrContentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
