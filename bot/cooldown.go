package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold is the bucket count above which idle buckets are dropped
const pruneThreshold = 4096

// Cooldowns tracks token buckets keyed by user, guild or command
type Cooldowns struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	now     func() time.Time
}

// NewCooldowns creates an empty bucket set
func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		buckets: make(map[string]*rate.Limiter),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests
func (c *Cooldowns) WithClock(now func() time.Time) *Cooldowns {
	c.now = now
	return c
}

// Take consumes one use from the bucket allowing uses per window.
// When the bucket is empty it returns false and how long until a use frees up.
func (c *Cooldowns) Take(key string, uses int, per time.Duration) (time.Duration, bool) {
	if uses <= 0 || per <= 0 {
		return 0, true
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.buckets[key]
	if !ok {
		if len(c.buckets) >= pruneThreshold {
			c.prune(now)
		}
		limiter = rate.NewLimiter(rate.Every(per/time.Duration(uses)), uses)
		c.buckets[key] = limiter
	}

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return per, false
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// prune drops buckets that have fully refilled
func (c *Cooldowns) prune(now time.Time) {
	for key, limiter := range c.buckets {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(c.buckets, key)
		}
	}
}

// Len returns the number of tracked buckets
func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}
