package multiblog

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RequestLimiter is a per-key token-bucket rate limiter. Each key may burst
// up to max requests and regains max tokens per window.
type RequestLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRequestLimiter creates a RequestLimiter that allows max requests per
// key per window. Close stops its cleanup goroutine.
func NewRequestLimiter(max int, window time.Duration) *RequestLimiter {
	if max < 1 {
		max = 1
	}
	l := &RequestLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// cleanup forgets keys idle for a full window; their bucket would be full
// again anyway.
func (l *RequestLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for key, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, key)
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether key is under the limit and records the request.
func (l *RequestLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Close stops the cleanup goroutine.
func (l *RequestLimiter) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
