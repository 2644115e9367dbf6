// Package memory is a process-local slot backend. Values live as long as the
// Repository does.
package memory

import (
	"context"
	"sync"
)

type Repository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewRepository() *Repository {
	return &Repository{values: make(map[string][]byte)}
}

func (r *Repository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (r *Repository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = append([]byte{}, value...)
	return nil
}

func (r *Repository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
