package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"diamond-duel/internal/game"
)

// MemoryStore backs tests and DSN-less dev runs. Snapshots go through the
// same JSON encoding as the postgres store so restore semantics match.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	wakes    map[string]time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: map[string][]byte{},
		wakes:    map[string]time.Time{},
	}
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*game.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	var sess game.GameSession
	if err := json.Unmarshal(snapshot, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) PutSession(_ context.Context, sess *game.GameSession) error {
	snapshot, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = snapshot
	return nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.wakes, id)
	return nil
}

func (s *MemoryStore) ScheduleWake(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	s.wakes[id] = at
	return nil
}

func (s *MemoryStore) CancelWake(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wakes, id)
	return nil
}

func (s *MemoryStore) DueWakes(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, at := range s.wakes {
		if !at.After(now) {
			ids = append(ids, id)
			delete(s.wakes, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}
