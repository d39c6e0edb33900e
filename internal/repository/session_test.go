package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/leadtrack/internal/reliability/circuitbreaker"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = value.(string)
	f.ttl[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.ErrNil
	}
	return v, nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.data, key)
	return nil
}

func TestRedisSessionStore(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	kv := newFakeKV()
	store := NewRedisSessionStore(kv, nil, nil)

	session := &domain.Session{
		ID: "s-1", UserID: "u-1",
		CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	c.Assert(store.Create(ctx, session), qt.IsNil)
	c.Assert(kv.ttl["session:s-1"] > 59*time.Minute, qt.IsTrue)

	got, err := store.Get(ctx, "s-1")
	c.Assert(err, qt.IsNil)
	c.Assert(got.UserID, qt.Equals, "u-1")

	c.Assert(store.Delete(ctx, "s-1"), qt.IsNil)
	_, err = store.Get(ctx, "s-1")
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
}

func TestRedisSessionStoreBreakerOpens(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	breaker := circuitbreaker.NewCircuitBreaker(2, 1, time.Hour)
	store := NewRedisSessionStore(kv, breaker, nil)

	for i := 0; i < 2; i++ {
		_, err := store.Get(ctx, "s-1")
		c.Assert(err, qt.ErrorMatches, "failed to get session: connection refused")
	}
	_, err := store.Get(ctx, "s-1")
	c.Assert(err, qt.ErrorIs, circuitbreaker.ErrOpen)
}

func TestRedisSessionStoreMissDoesNotTrip(t *testing.T) {
	c := qt.New(t)
	breaker := circuitbreaker.NewCircuitBreaker(1, 1, time.Hour)
	store := NewRedisSessionStore(newFakeKV(), breaker, nil)

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "unknown")
		c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
	}
	c.Assert(breaker.GetState(), qt.Equals, circuitbreaker.StateClosed)
}

func TestMemorySessionStore(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	store := NewMemorySessionStore(nil)

	c.Assert(store.Create(ctx, &domain.Session{ID: "s-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}), qt.IsNil)
	c.Assert(store.Create(ctx, &domain.Session{ID: "s-2", UserID: "u-2", ExpiresAt: time.Now().Add(-time.Second)}), qt.IsNil)

	got, err := store.Get(ctx, "s-1")
	c.Assert(err, qt.IsNil)
	c.Assert(got.UserID, qt.Equals, "u-1")

	_, err = store.Get(ctx, "s-2")
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
	c.Assert(store.Sweep(), qt.Equals, 1)

	c.Assert(store.Delete(ctx, "s-1"), qt.IsNil)
	_, err = store.Get(ctx, "s-1")
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
}
