package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
)

// RateLimiter applies fixed window rate limits backed by Redis. When
// Redis is unavailable the limiter fails open so an outage does not
// take the API down with it.
type RateLimiter struct {
	client  redis.UniversalClient
	logger  zerolog.Logger
	enabled bool
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(client redis.UniversalClient, enabled bool, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client:  client,
		logger:  logger,
		enabled: enabled,
	}
}

// Limit returns a middleware enforcing at most limit requests per window
// per client IP within the named scope.
func (rl *RateLimiter) Limit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowStart := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.ClientIP(), windowStart)

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn().Err(err).Str("scope", scope).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.client.Expire(ctx, key, window).Err(); err != nil {
				rl.logger.Warn().Err(err).Str("scope", scope).Msg("Failed to set rate limit window expiry")
			}
		}

		if count > int64(limit) {
			retryAfter := window - time.Duration(time.Now().Unix()%int64(window.Seconds()))*time.Second
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))

			errorDetail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests")
			errorDetail = errorDetail.WithDetails(fmt.Sprintf("Rate limit exceeded, retry in %d seconds", int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}
