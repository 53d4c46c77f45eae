package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// LimiterRegistry hands out one token bucket per client key (the front
// door keys on client IP). Buckets are created lazily and shared for the
// process lifetime.
type LimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	qps      rate.Limit
	burst    int
}

func NewLimiterRegistry(qps float64, burst int) *LimiterRegistry {
	if qps <= 0 {
		qps = 50
	}
	if burst <= 0 {
		burst = int(qps) * 2
	}
	return &LimiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		qps:      rate.Limit(qps),
		burst:    burst,
	}
}

func (r *LimiterRegistry) Get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, ok := r.limiters[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(r.qps, r.burst)
	r.limiters[key] = limiter
	return limiter
}
