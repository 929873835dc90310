package cache

import (
	"context"
	"sync"
)

// MemoryQuotaStore is an in-process quota store for development and tests.
// Counters are lost on restart.
type MemoryQuotaStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{counts: make(map[string]int)}
}

func (s *MemoryQuotaStore) GetCount(_ context.Context, userID, dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID+"|"+dateKey], nil
}

func (s *MemoryQuotaStore) Increment(_ context.Context, userID, dateKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID+"|"+dateKey]++
	return nil
}
