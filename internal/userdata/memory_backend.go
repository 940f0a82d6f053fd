package userdata

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps records in process. Failures can be injected to
// exercise persistence error paths.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string][]byte
	saves   int
	saveErr error
	loadErr error
	closed  bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

// Seed stores data under key without counting as a save.
func (m *MemoryBackend) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = slices.Clone(data)
}

// Record returns the stored bytes for key.
func (m *MemoryBackend) Record(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.records[key]
	return slices.Clone(data), ok
}

// Saves reports how many successful saves have happened.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes subsequent saves return err; nil restores normal behavior.
func (m *MemoryBackend) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// FailLoads makes subsequent loads return err; nil restores normal behavior.
func (m *MemoryBackend) FailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// Closed reports whether Close was called.
func (m *MemoryBackend) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	data, ok := m.records[key]
	return slices.Clone(data), ok, nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[key] = slices.Clone(data)
	m.saves++
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
