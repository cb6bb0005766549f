package approval

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process continuation store with TTL
// eviction.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*Continuation
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*Continuation),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, c *Continuation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.Token] = c
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, token string) (*Continuation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	delete(s.items, token)
	if s.expired(c) {
		return nil, ErrTokenNotFound
	}
	return c, nil
}

// Cleanup removes expired continuations.
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, c := range s.items {
		if s.expired(c) {
			delete(s.items, token)
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) expired(c *Continuation) bool {
	return s.ttl > 0 && s.now().Sub(c.CreatedAt) > s.ttl
}
