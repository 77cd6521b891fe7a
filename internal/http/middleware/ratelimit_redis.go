package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task_tracker/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter shared by every process that
// points at the same Redis. Redis errors fail open.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to addr and pings it. A nil limiter and the
// ping error are returned when Redis is unreachable.
func NewRedisRateLimiter(addr, password string, db int) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisRateLimiter{client: client}, nil
}

func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

// Limit counts requests under rl:<window_seconds>:<client ip>.
func (l *RedisRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err == nil && val == 1 {
			err = l.client.Expire(ctx, key, window).Err()
		}
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			// a key left without a TTL would block this client forever
			if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl < 0 {
				if err := l.client.Expire(ctx, key, window).Err(); err != nil {
					logger.Warn("rate limiter unavailable", "error", err)
				}
			}
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
