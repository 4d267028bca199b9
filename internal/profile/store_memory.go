package profile

import (
	"context"
	"sync"
	"time"

	"vitrin/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map. It backs development mode and tests and
// intentionally favors clarity over performance.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[string]Profile)}
}

func (s *InMemory) Get(_ context.Context, uid string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[uid]; ok {
		return &p, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UID] = *p
	return nil
}

func (s *InMemory) Update(_ context.Context, uid string, u Update) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p.Apply(u, time.Now())
	s.profiles[uid] = p
	return &p, nil
}
