package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Checkpoint represents the state saved after one completed step of a run.
type Checkpoint struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Step      int       `json:"step"`
	NodeName  string    `json:"node_name"`
	Label     string    `json:"label,omitempty"`
	Next      string    `json:"next"`
	State     any       `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckpointStore defines the interface for checkpoint persistence
type CheckpointStore interface {
	// Save stores a checkpoint
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints of a run ordered by step
	List(ctx context.Context, runID string) ([]*Checkpoint, error)

	// Clear removes all checkpoints of a run
	Clear(ctx context.Context, runID string) error
}

// NewCheckpoint builds the checkpoint recorded for a route.
func NewCheckpoint(runID string, route Route, state any) *Checkpoint {
	return &Checkpoint{
		ID:        uuid.NewString(),
		RunID:     runID,
		Step:      route.Step,
		NodeName:  route.From,
		Label:     route.Label,
		Next:      route.To,
		State:     state,
		Timestamp: time.Now(),
	}
}

// DecodeState returns the checkpoint state as S. Stores that serialize
// checkpoints hand back generic JSON values, which are re-decoded into S.
func DecodeState[S any](checkpoint *Checkpoint) (S, error) {
	var state S
	if s, ok := checkpoint.State.(S); ok {
		return s, nil
	}

	var raw []byte
	switch v := checkpoint.State.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return state, fmt.Errorf("failed to marshal checkpoint state: %w", err)
		}
		raw = data
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to decode checkpoint state: %w", err)
	}
	return state, nil
}

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
	runs        map[string][]string
}

// NewMemoryCheckpointStore creates a new in-memory checkpoint store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*Checkpoint),
		runs:        make(map[string][]string),
	}
}

// Save stores a checkpoint
func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.checkpoints[checkpoint.ID]; !exists {
		m.runs[checkpoint.RunID] = append(m.runs[checkpoint.RunID], checkpoint.ID)
	}
	m.checkpoints[checkpoint.ID] = checkpoint
	return nil
}

// Load retrieves a checkpoint by ID
func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
	}
	return cp, nil
}

// List returns all checkpoints of a run ordered by step
func (m *MemoryCheckpointStore) List(_ context.Context, runID string) ([]*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.runs[runID]
	result := make([]*Checkpoint, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.checkpoints[id])
	}
	slices.SortStableFunc(result, func(a, b *Checkpoint) int { return a.Step - b.Step })
	return result, nil
}

// Clear removes all checkpoints of a run
func (m *MemoryCheckpointStore) Clear(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.runs[runID] {
		delete(m.checkpoints, id)
	}
	delete(m.runs, runID)
	return nil
}
