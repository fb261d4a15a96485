package handlers

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxVisitors bounds the per-IP limiter table; the least recently seen
// IP is evicted first.
const maxVisitors = 10000

type RateLimiter struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows perMinute requests per client IP, bursting up to
// the same amount. It returns nil for perMinute <= 0.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	visitors, _ := lru.New[string, *rate.Limiter](maxVisitors)
	return &RateLimiter{
		visitors: visitors,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors.Add(ip, limiter)
	}
	return limiter.AllowN(rl.now(), 1)
}
