package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window request counter keyed by organization
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go limiter.cleanupOldBuckets()
	return limiter
}

// Allow records a request for key. Requests without a key are never limited.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	return l.take(key, l.maxReqs, l.window)
}

// AllowStrict applies a separate, usually tighter limit, e.g. for login attempts
func (l *Limiter) AllowStrict(identifier string, maxReqs int, window time.Duration) bool {
	return l.take("strict:"+identifier, maxReqs, window)
}

func (l *Limiter) take(key string, maxReqs int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-window)
	reqs := b.requests[:0]
	for _, t := range b.requests {
		if t.After(cutoff) {
			reqs = append(reqs, t)
		}
	}
	b.requests = reqs
	b.lastSeen = now

	if len(b.requests) >= maxReqs {
		return false
	}

	b.requests = append(b.requests, now)
	return true
}

func (l *Limiter) cleanupOldBuckets() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.evictStale()
		}
	}
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()
	staleThreshold := l.now().Add(-15 * time.Minute)
	for key, b := range l.buckets {
		if b.lastSeen.Before(staleThreshold) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine
func (l *Limiter) Stop() {
	l.once.Do(func() {
		l.cleanup.Stop()
		close(l.done)
	})
}
