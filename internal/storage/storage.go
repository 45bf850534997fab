package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when a namespace holds no data
var ErrNotFound = errors.New("namespace not found")

// Backend persists one opaque document per namespace.
// Put replaces the whole document in a single write.
type Backend interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, data []byte) error
	Delete(ctx context.Context, namespace string) error
	Close() error
}

// MemoryBackend keeps documents in process memory
type MemoryBackend struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		docs: make(map[string][]byte),
	}
}

func (m *MemoryBackend) Get(ctx context.Context, namespace string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.docs[namespace]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Put(ctx context.Context, namespace string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[namespace] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, namespace)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
