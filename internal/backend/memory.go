package backend

import (
	"context"
	"sort"
	"sync"

	"tripsplit/internal/session"
)

// MemoryStore keeps session state for the lifetime of the process.
// Useful for demos and tests; nothing survives a restart.
type MemoryStore struct {
	mu        sync.Mutex
	groups    map[string]session.Group
	positions map[string]int
	active    string
}

var _ session.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:    make(map[string]session.Group),
		positions: make(map[string]int),
	}
}

func (s *MemoryStore) Load(_ context.Context) ([]session.Group, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.positions[names[i]] < s.positions[names[j]]
	})

	groups := make([]session.Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, s.groups[name])
	}
	return groups, s.active, nil
}

func (s *MemoryStore) ReplaceGroup(_ context.Context, g session.Group, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.Name] = g
	s.positions[g.Name] = position
	return nil
}

func (s *MemoryStore) DeleteGroup(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, name)
	delete(s.positions, name)
	if s.active == name {
		s.active = ""
	}
	return nil
}

func (s *MemoryStore) SetActive(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = name
	return nil
}
