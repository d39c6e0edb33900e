package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/pkg/cache"
)

// MemorySessionStore keeps sessions in the process. Used when no Redis is configured.
type MemorySessionStore struct {
	cache *cache.Cache
}

// NewMemorySessionStore creates an in-process session store
func NewMemorySessionStore(c *cache.Cache) *MemorySessionStore {
	if c == nil {
		c = cache.New()
	}
	return &MemorySessionStore{cache: c}
}

// Create stores a copy of session until it expires
func (s *MemorySessionStore) Create(_ context.Context, session *domain.Session) error {
	cp := *session
	s.cache.Set(sessionKeyPrefix+session.ID, &cp, time.Until(session.ExpiresAt))
	return nil
}

// Get returns the session or ErrNotFound
func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	v, ok := s.cache.Get(sessionKeyPrefix + id)
	if !ok {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	cp := *v.(*domain.Session)
	return &cp, nil
}

// Delete removes a session
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(sessionKeyPrefix + id)
	return nil
}

// Sweep drops expired sessions
func (s *MemorySessionStore) Sweep() int {
	return s.cache.Sweep()
}
