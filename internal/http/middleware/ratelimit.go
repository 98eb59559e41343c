package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 30 * time.Minute
	limiterSweepEvery = 5 * time.Minute
)

type ipLimiter struct {
	limiter *rate.Limiter
	last    atomic.Int64 // unix nanos
}

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped during a sweep piggybacked on incoming requests.
type IPRateLimiter struct {
	rps   rate.Limit
	burst int

	limiters  sync.Map // map[string]*ipLimiter
	lastSweep atomic.Int64
	now       func() time.Time
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &IPRateLimiter{rps: rate.Limit(rps), burst: burst, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

// Allow consumes one token for ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	now := l.now()
	v, _ := l.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	il := v.(*ipLimiter)
	il.last.Store(now.UnixNano())
	l.maybeSweep(now)
	return il.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) maybeSweep(now time.Time) {
	prev := l.lastSweep.Load()
	if now.UnixNano()-prev < int64(limiterSweepEvery) || !l.lastSweep.CompareAndSwap(prev, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.limiters.Range(func(key, val any) bool {
		if val.(*ipLimiter).last.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit answers 429 once the client IP's bucket is empty.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "terlalu banyak percobaan, coba lagi nanti",
				"code":       "rate_limited",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
