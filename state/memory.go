package state

import "sync"

// MemoryCheckpointStore keeps the checkpoint in memory. Used by tests as a
// stand-in for the sqlite-backed StateDB.
type MemoryCheckpointStore struct {
	mu    sync.Mutex
	value uint64
	set   bool
	saves int

	// SaveErr, when non-nil, makes the next Save fail with it.
	SaveErr error
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{}
}

func (m *MemoryCheckpointStore) LoadCheckpoint() (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set, nil
}

func (m *MemoryCheckpointStore) SaveCheckpoint(h uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		err := m.SaveErr
		m.SaveErr = nil
		return err
	}
	m.value = h
	m.set = true
	m.saves++
	return nil
}

// Saves reports how many successful writes happened.
func (m *MemoryCheckpointStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
