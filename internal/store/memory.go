package store

// #region imports
import (
	"context"
	"sync"

	"github.com/danielpatrickdp/disposition-engine/internal/mood"
)

// #endregion

// #region memory-struct

// Memory is an in-process Store used by tests and the replay harness.
// Snapshots are deep-copied across the boundary so callers cannot alias
// stored state.
type Memory struct {
	mu     sync.RWMutex
	states map[string]*mood.EntityState

	// FailSaves forces Save to return failErr while > 0, decrementing per
	// call. Exercises the recoverable-save-failure path.
	failSaves int
	failErr   error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{states: make(map[string]*mood.EntityState)}
}

// #endregion memory-struct

// #region load-save

// Load returns a copy of the stored snapshot, or (nil, nil) when unseen.
func (m *Memory) Load(_ context.Context, entityID string) (*mood.EntityState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[entityID]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

// Save stores a copy of st.
func (m *Memory) Save(_ context.Context, st *mood.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves > 0 {
		m.failSaves--
		return m.failErr
	}
	m.states[st.EntityID] = st.Clone()
	return nil
}

// #endregion load-save

// #region test-hooks

// FailNextSaves makes the next n Save calls return err.
func (m *Memory) FailNextSaves(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = n
	m.failErr = err
}

// Len returns the number of stored entities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

// #endregion test-hooks
