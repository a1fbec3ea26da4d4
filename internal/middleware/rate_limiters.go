package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (l *limiterInfo) touch(now time.Time) {
	l.mu.Lock()
	l.lastSeen = now
	l.mu.Unlock()
}

func (l *limiterInfo) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastSeen)
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	rps      int
	limiters sync.Map
}

// NewIPRateLimiter creates a limiter allowing rps requests per second per IP,
// with bursts of the same size.
func NewIPRateLimiter(rps int) *IPRateLimiter {
	return &IPRateLimiter{rps: rps}
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()
	actual, _ := l.limiters.LoadOrStore(ip, &limiterInfo{
		limiter:  rate.NewLimiter(rate.Limit(l.rps), l.rps),
		lastSeen: now,
	})
	info := actual.(*limiterInfo)
	info.touch(now)
	return info.limiter.Allow()
}

// Cleanup forgets clients idle for longer than expiration.
func (l *IPRateLimiter) Cleanup(expiration time.Duration) {
	now := time.Now()
	l.limiters.Range(func(key, value interface{}) bool {
		if value.(*limiterInfo).idleSince(now) > expiration {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP applies rate limiting to requests per IP address. A
// non-positive rps disables the limit.
func RateLimitByIP(rps int, cleanupInterval time.Duration, expiration time.Duration) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := NewIPRateLimiter(rps)

	// Cleanup goroutine
	go func() {
		for range time.Tick(cleanupInterval) {
			limiter.Cleanup(expiration)
		}
	}()

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			logger.FromContext(c.Request.Context()).Warn("rate limit exceeded", zap.String("ip", c.ClientIP()))
			abortWithEnvelope(c, http.StatusTooManyRequests, "RateLimited", "too many requests")
			return
		}
		c.Next()
	}
}

// abortWithEnvelope rejects a request using the failure envelope shape.
func abortWithEnvelope(c *gin.Context, status int, kind, details string) {
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "details": details})
}
