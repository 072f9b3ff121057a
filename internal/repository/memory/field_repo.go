// Package memory holds a FieldStore that lives only as long as the process.
package memory

import (
	"context"
	"sync"

	"alcyxob/gym-dashboard/internal/repository"
)

type FieldStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewFieldStore() *FieldStore {
	return &FieldStore{values: make(map[string][]byte)}
}

func (s *FieldStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *FieldStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}
