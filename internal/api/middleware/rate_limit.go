package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"bibliovault/internal/config"
	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// clientBucket is the token bucket of one client address
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-client rate limiting using token buckets.
// Idle buckets are swept on a cron schedule.
type RateLimiter struct {
	buckets  map[string]*clientBucket
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	window   int
	requests int
	idleTTL  time.Duration
	cron     *cron.Cron
}

// NewRateLimiter creates a rate limiter and starts its sweeper
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	window := time.Duration(cfg.Window) * time.Second

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*clientBucket),
		rate:     rate.Every(window / time.Duration(cfg.Requests)),
		burst:    burst,
		window:   cfg.Window,
		requests: cfg.Requests,
		idleTTL:  2 * window,
		cron:     cron.New(),
	}

	if _, err := rl.cron.AddFunc(cfg.Cleanup, func() { rl.sweep(time.Now()) }); err != nil {
		return nil, fmt.Errorf("invalid rate limit cleanup schedule %q: %w", cfg.Cleanup, err)
	}
	rl.cron.Start()

	return rl, nil
}

// Stop halts the sweeper
func (rl *RateLimiter) Stop() {
	<-rl.cron.Stop().Done()
}

// bucket returns the limiter for key, creating it on first use
func (rl *RateLimiter) bucket(key string, now time.Time) *rate.Limiter {
	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		// Double check after acquiring write lock
		if b, ok = rl.buckets[key]; !ok {
			b = &clientBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	rl.mu.Lock()
	b.lastSeen = now
	rl.mu.Unlock()

	return b.limiter
}

// sweep drops buckets not used since idleTTL before now
func (rl *RateLimiter) sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.idleTTL {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// size returns the number of tracked clients
func (rl *RateLimiter) size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.buckets)
}

// Middleware returns a Gin middleware function that implements rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		limiter := rl.bucket(c.ClientIP(), now)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requests))

		if !limiter.AllowN(now, 1) {
			r := limiter.ReserveN(now, 1)
			wait := r.DelayFrom(now)
			r.CancelAt(now)

			retryAfter := int(math.Ceil(wait.Seconds()))
			if !r.OK() || retryAfter < 1 {
				retryAfter = rl.window
			}

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(time.Duration(retryAfter)*time.Second).Unix()))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.RateLimitResponse{
				Error:      "rate limit exceeded",
				RetryAfter: fmt.Sprintf("%ds", retryAfter),
			})
			return
		}

		remaining := int(limiter.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		if remaining > rl.requests {
			remaining = rl.requests
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(time.Duration(rl.window)*time.Second).Unix()))

		c.Next()
	}
}
