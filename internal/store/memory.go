package store

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when nothing has been saved under a namespace.
	ErrNotFound = errors.New("no state saved for namespace")
)

// MemoryStore is a concurrency-safe in-memory implementation of a durable
// state store. Contents are lost when the process exits.
type MemoryStore struct {
	mu sync.RWMutex

	// key: namespace, value: serialized payload
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Load returns a copy of the payload saved under namespace.
func (s *MemoryStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Save replaces the payload stored under namespace.
func (s *MemoryStore) Save(ctx context.Context, namespace string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[namespace] = append([]byte(nil), payload...)
	return nil
}

// Delete removes namespace. Deleting a missing namespace is not an error.
func (s *MemoryStore) Delete(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, namespace)
	return nil
}
