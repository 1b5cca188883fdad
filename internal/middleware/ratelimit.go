package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKey is the redis counter for ip in the fixed window containing now.
func RateLimitKey(ip string, now time.Time, window time.Duration) string {
	return fmt.Sprintf("newsletter:rate_limit:%s:%d", ip, now.UnixNano()/int64(window))
}

// RateLimit caps mutating requests to max per window per client IP. Reads
// pass through. Redis failures fail open.
func RateLimit(rdb *redis.Client, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || window <= 0 || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := RateLimitKey(ip, time.Now(), window)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, window+time.Second)
		}

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c, "Too many requests. Please slow down.")
			return
		}

		c.Next()
	}
}
