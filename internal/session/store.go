package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coursereg/coursereg-go/internal/model"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Store keeps server-side session records keyed by session ID.
type Store interface {
	Save(ctx context.Context, sess *model.Session) error
	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. A janitor goroutine drops
// expired records every cleanup interval until Close is called.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	now      func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a MemoryStore. A non-positive cleanup interval
// disables the janitor.
func NewMemoryStore(cleanup time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if cleanup > 0 {
		go s.janitor(cleanup)
	}
	return s
}

func (s *MemoryStore) Save(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
}
