package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/leadtrack/internal/reliability/circuitbreaker"
)

const sessionKeyPrefix = "session:"

// KeyValue is the subset of the Redis client the session store uses
type KeyValue interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RedisSessionStore implements domain.SessionStore using Redis keys with TTL
type RedisSessionStore struct {
	kv      KeyValue
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewRedisSessionStore creates a session store. A nil breaker gets a default one.
func NewRedisSessionStore(kv KeyValue, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) *RedisSessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	}
	return &RedisSessionStore{kv: kv, breaker: breaker, logger: logger}
}

// Create stores a session until its expiry time
func (s *RedisSessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	err = s.breaker.Execute(func() error {
		return s.kv.Set(ctx, sessionKeyPrefix+session.ID, string(data), ttl)
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("session created", slog.String("user_id", session.UserID))
	return nil
}

// Get loads a session; an expired or unknown id yields ErrNotFound
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var data string
	err := s.breaker.Execute(func() error {
		var err error
		data, err = s.kv.Get(ctx, sessionKeyPrefix+id)
		return err
	}, func(err error) bool { return !redis.IsNil(err) })
	if err != nil {
		if redis.IsNil(err) {
			return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	err := s.breaker.Execute(func() error {
		return s.kv.Delete(ctx, sessionKeyPrefix+id)
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
