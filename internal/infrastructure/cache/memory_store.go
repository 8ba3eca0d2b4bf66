package cache

import (
	"context"
	"sync"
	"time"

	"github.com/maintledger/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// MemoryStore keeps claimed keys in a map. Expired keys count as free and
// are swept periodically until Close.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time

	stop chan struct{}
	once sync.Once
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		expires: make(map[string]time.Time),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go s.sweepLoop()
	return s
}

// MarkProcessed claims key for ttl unless a live claim exists
func (s *MemoryStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Len counts stored keys, expired ones included until the next sweep
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)
