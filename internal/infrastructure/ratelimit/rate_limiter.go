package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rule allows Burst events at once, refilled at one event per Every.
type Rule struct {
	Burst int
	Every time.Duration
}

// PerMinute spreads n events evenly over a minute with a burst of n.
func PerMinute(n int) Rule {
	if n <= 0 {
		n = 1
	}
	return Rule{Burst: n, Every: time.Minute / time.Duration(n)}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for different users and actions
type RateLimiter struct {
	rules       map[string]Rule
	defaultRule Rule
	buckets     map[string]*bucket
	mutex       sync.Mutex
	now         func() time.Time
}

func NewRateLimiter(rules map[string]Rule) *RateLimiter {
	return &RateLimiter{
		rules:       rules,
		defaultRule: PerMinute(20),
		buckets:     make(map[string]*bucket),
		now:         time.Now,
	}
}

// Allow checks if a user action is allowed. When it is not, the returned
// duration is how long until the next event would be admitted.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		rule, ok := rl.rules[action]
		if !ok {
			rule = rl.defaultRule
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Every(rule.Every), rule.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets that haven't been used for maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine evicts idle buckets every interval until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}
