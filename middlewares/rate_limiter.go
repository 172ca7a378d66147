package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/restaurant-pos/utils"
)

var errTooManyRequests = errors.New("too many requests, please wait a moment")

// RateLimiter allows at most rate requests per client IP within a sliding
// interval. IPs with no request inside the window are forgotten at most once
// per interval.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.lastSweep) >= rl.interval {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// sweep must be called with mu held.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter is a per-IP token bucket for the login endpoint. A bucket left
// alone long enough to refill completely is dropped; a new one behaves the
// same.
type LoginLimiter struct {
	limit     rate.Limit
	burst     int
	idle      time.Duration
	limiters  map[string]*ipLimiter
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
}

// NewLoginLimiter allows burst attempts at once and one more every per.
func NewLoginLimiter(per time.Duration, burst int) *LoginLimiter {
	return &LoginLimiter{
		limit:    rate.Every(per),
		burst:    burst,
		idle:     per * time.Duration(burst),
		limiters: make(map[string]*ipLimiter),
		now:      time.Now,
	}
}

func (ll *LoginLimiter) limiter(ip string) *rate.Limiter {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := ll.now()
	if now.Sub(ll.lastSweep) >= ll.idle {
		for key, l := range ll.limiters {
			if now.Sub(l.lastSeen) >= ll.idle {
				delete(ll.limiters, key)
			}
		}
		ll.lastSweep = now
	}

	l, ok := ll.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(ll.limit, ll.burst)}
		ll.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter
}

func (ll *LoginLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ll.limiter(c.ClientIP()).Allow() {
			utils.InfoLogger.Warnf("Login rate limit hit for %s", c.ClientIP())
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}
