package history

import (
	"context"
	"sync"

	"ratemate/internal/models"
)

// MemoryStore is a process-wide in-memory history store. Entries live until
// process restart; there is no idle-session eviction. The mutex serializes
// appends for the same session, so concurrent tabs cannot drop turns.
type MemoryStore struct {
	mu        sync.RWMutex
	cap       int
	histories map[string][]models.Turn
}

// NewMemoryStore creates a store trimming each history to the given cap.
func NewMemoryStore(cap int) *MemoryStore {
	return &MemoryStore{
		cap:       cap,
		histories: make(map[string][]models.Turn),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.histories[sessionID]
	out := make([]models.Turn, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := append(s.histories[sessionID], turns...)
	s.histories[sessionID] = trimTurns(merged, s.cap)
	return nil
}

// Len reports the stored turn count for a session.
func (s *MemoryStore) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories[sessionID])
}
