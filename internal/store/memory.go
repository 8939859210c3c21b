package store

import (
	"context"
	"sync"
)

// MemoryStore backend em memória para testes: mesmas semânticas do
// FileStore, sem disco.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailOnSave permite simular falha de persistência nos testes de
	// atomicidade.
	FailOnSave map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	if err := m.FailOnSave[key]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *MemoryStore) Close() error { return nil }
