package socket

import (
	"sync"
	"time"

	"github.com/sbertrand101/web-phone/internal/domain"
)

// AuthRateLimiter bounds sign-in attempts per user id inside a sliding
// window, so a misbehaving tab cannot hammer the vendor API.
type AuthRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
}

func NewAuthRateLimiter(limit int, interval time.Duration) *AuthRateLimiter {
	return &AuthRateLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *AuthRateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[uid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		return false
	}

	fresh = append(fresh, now)
	rl.history[uid] = fresh
	return true
}
