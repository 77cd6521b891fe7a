package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// MemoryRateLimiter is a per-process fixed-window limiter keyed by client IP.
// It is used when Redis is not configured.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientInfo
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

func (l *MemoryRateLimiter) allow(key string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > window {
		l.sweep(now, window)
	}
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) > window {
		l.clients[key] = &clientInfo{start: now, count: 1}
		return true
	}
	ci.count++
	return ci.count <= maxRequests
}

// sweep drops clients whose window has ended. Caller holds mu.
func (l *MemoryRateLimiter) sweep(now time.Time, window time.Duration) {
	for key, ci := range l.clients {
		if now.Sub(ci.start) > window {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *MemoryRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}
		if !l.allow(c.ClientIP(), maxRequests, window) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
