package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Throttle limits each client IP to limit requests per minute using a
// fixed window counter in Redis. A nil client or limit <= 0 disables it.
// Redis errors let the request through.
func Throttle(client redis.Cmdable, limit int, logger *zap.SugaredLogger) gin.HandlerFunc {
	return throttle(client, limit, logger, time.Now)
}

func throttle(client redis.Cmdable, limit int, logger *zap.SugaredLogger, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		window := now().UTC().Truncate(time.Minute)
		key := fmt.Sprintf("tas:throttle:%s:%d", c.ClientIP(), window.Unix())

		ctx := c.Request.Context()
		pipe := client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warnw("throttle unavailable, allowing request",
				"request_id", c.GetString("request_id"),
				"client_ip", c.ClientIP(),
				"error", err,
			)
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			retry := window.Add(time.Minute).Sub(now().UTC())
			c.Header("Retry-After", fmt.Sprintf("%d", int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many submissions, please try again later"})
			return
		}
		c.Next()
	}
}
