package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket is a single token bucket for one rate-limit key.
type bucket struct {
	tokens     float64
	lastAccess time.Time
}

// MemoryLimiter implements Limiter with an in-memory token bucket per key.
//
// Each key gets an independent bucket with a configurable refill rate
// (tokens per second) and burst capacity. Game clients flush telemetry in
// bursts at room transitions, so burst should comfortably exceed the batch
// size a client sends at once. A background goroutine evicts idle buckets
// to bound memory.
type MemoryLimiter struct {
	rate  float64 // tokens added per second
	burst float64 // maximum tokens (bucket capacity)

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryLimiter creates a token bucket limiter.
//   - rate: sustained requests per second per key
//   - burst: maximum burst size (token bucket capacity)
//
// Call Close to stop the eviction goroutine.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	m := &MemoryLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Allow consumes one token from the bucket for key. Returns true if a token
// was available (request should proceed), false otherwise (rate limited).
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b, ok := m.buckets[key]
	if !ok {
		// First request for this key: start with a full bucket minus one token.
		m.buckets[key] = &bucket{
			tokens:     m.burst - 1,
			lastAccess: now,
		}
		return true, nil
	}

	// Refill tokens based on elapsed time.
	elapsed := now.Sub(b.lastAccess).Seconds()
	b.tokens += elapsed * m.rate
	if b.tokens > m.burst {
		b.tokens = m.burst
	}
	b.lastAccess = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Close stops the eviction goroutine. Safe to call multiple times.
func (m *MemoryLimiter) Close() error {
	m.stopOnce.Do(func() { close(m.done) })
	return nil
}

const bucketIdleTTL = 10 * time.Minute

func (m *MemoryLimiter) evictLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *MemoryLimiter) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-bucketIdleTTL)
	for key, b := range m.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}
