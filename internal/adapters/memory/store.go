// Package memory provides the ephemeral storage tier: process-local and gone on exit.
package memory

import (
	"context"
	"sync"
	"time"
)

// Store is an in-process key/value tier. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	name   string
	values map[string]string
}

// NewStore creates an empty ephemeral tier named "ephemeral".
func NewStore() *Store {
	return NewNamedStore("ephemeral")
}

// NewNamedStore creates an empty in-process tier with a custom name.
func NewNamedStore(name string) *Store {
	return &Store{name: name, values: make(map[string]string)}
}

// Name identifies the store in log records.
func (s *Store) Name() string { return s.name }

// Set stores value under key. The ttl is ignored: entries live as long as the process.
func (s *Store) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

