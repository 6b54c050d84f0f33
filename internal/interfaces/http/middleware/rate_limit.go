// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit limits requests per client IP using a fixed one-minute
// window counter in Redis. When Redis is unavailable the request is
// allowed through.
func RateLimit(redisClient *redis.Client, limit int, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/60)

		count, err := redisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(limit) {
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
