package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/cache"
	"github.com/hanapbuhay/backend/internal/config"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/monitoring"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter implements sliding window rate limiting using Redis
type Limiter struct {
	redis  *cache.Redis
	config *config.RateLimitConfig
}

// Result contains the outcome of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int64
	Limit      int
	RetryAfter time.Duration
}

// New creates a new rate limiter. A nil Redis handle disables limiting.
func New(r *cache.Redis, cfg *config.RateLimitConfig) *Limiter {
	return &Limiter{
		redis:  r,
		config: cfg,
	}
}

// Check checks whether a request from key is allowed under the sliding window
func (l *Limiter) Check(c *gin.Context, key string) (*Result, error) {
	limit := l.config.RequestsPerWindow
	windowSeconds := l.config.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	ctx := c.Request.Context()
	now := time.Now()
	windowStart := now.Add(-time.Duration(windowSeconds) * time.Second)

	redisKey := fmt.Sprintf("ratelimit:sliding:%s", key)

	// Sorted set per caller: score = timestamp, member = unique request id.
	pipe := l.redis.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := countCmd.Val()
	if count >= int64(limit) {
		return &Result{
			Allowed:    false,
			Remaining:  0,
			Limit:      limit,
			RetryAfter: time.Duration(windowSeconds) * time.Second,
		}, nil
	}

	err := l.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.New().String(),
	}).Err()
	if err != nil {
		return nil, err
	}
	l.redis.Client.Expire(ctx, redisKey, time.Duration(windowSeconds)*time.Second)

	return &Result{
		Allowed:   true,
		Remaining: int64(limit) - count - 1,
		Limit:     limit,
	}, nil
}

// Middleware returns a Gin middleware limiting per-caller request rates.
// Unauthenticated callers are keyed by client IP. Redis failures fail open.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.redis == nil {
			c.Next()
			return
		}

		key := c.GetString("account_id")
		if key == "" {
			key = c.ClientIP()
		}

		result, err := l.Check(c, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to check rate limit")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			monitoring.Get().RateLimitHits.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", fmt.Sprintf("%.0f", result.RetryAfter.Seconds()))
			requestID := c.GetString("request_id")
			c.JSON(http.StatusTooManyRequests, apierrors.ErrorResponse{
				Error:     *apierrors.ErrRateLimitedError,
				RequestID: requestID,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
