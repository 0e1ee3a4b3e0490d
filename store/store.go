// Package store provides key-value slots holding the board snapshot: memory, S3, Redis and SQLite.
// Load returns nil data and no error when the slot was never written.
package store

import (
	"context"
	"sync"
)

// Slot is a single stored value
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Memory keeps the value in process memory
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory makes memory slot with optional initial value
func NewMemory(data []byte) *Memory {
	return &Memory{data: copyBytes(data)}
}

// Load returns copy of the stored value
func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyBytes(m.data), nil
}

// Save replaces the stored value
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = copyBytes(data)
	return nil
}

// String implements fmt.Stringer
func (m *Memory) String() string {
	return "memory"
}

func copyBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	res := make([]byte, len(data))
	copy(res, data)
	return res
}
