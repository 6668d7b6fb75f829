package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a token-bucket budget per key (client address or member).
type Limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows perMinute requests per key with the given burst. A burst
// of zero derives one from the rate. A nil Limiter (perMinute <= 0) allows
// everything.
func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute / 10
		if burst < 1 {
			burst = 1
		}
	}
	return &Limiter{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    15 * time.Minute,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow reports whether one more request for key fits the budget.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	return l.get(key, now).AllowN(now, 1)
}

func (l *Limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[key]; ok {
		c.lastSeen = now
		return c.limiter
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.clients[key] = &client{limiter: lim, lastSeen: now}
	l.cleanupLocked(now)
	return lim
}

// cleanupLocked drops keys idle for longer than l.idle.
func (l *Limiter) cleanupLocked(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, key)
		}
	}
}
