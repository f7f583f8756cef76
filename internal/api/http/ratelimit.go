package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/config"
)

// RateLimiter bounds mutating calls per account using a Redis counter
// with a rolling window. Without a reachable Redis it fails open:
// bidding correctness never depends on the limiter.
type RateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	logger *zap.Logger
}

// NewRateLimiter constructs the limiter; client may be nil.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, cfg: cfg, logger: logger}
}

// Handle enforces the per-account request ceiling.
func (r *RateLimiter) Handle(c *fiber.Ctx) error {
	if !r.cfg.Enabled || r.client == nil {
		return c.Next()
	}

	identity := c.IP()
	if principal, ok := auth.PrincipalFromContext(c); ok {
		identity = principal.Address
	}
	key := fmt.Sprintf("ratelimit:%s", identity)

	count, err := r.client.Incr(c.Context(), key).Result()
	if err != nil {
		r.logger.Warn("rate limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		window := time.Duration(r.cfg.WindowSeconds) * time.Second
		if window <= 0 {
			window = time.Minute
		}
		r.client.Expire(c.Context(), key, window)
	}
	if count > int64(r.cfg.RequestsPerMin) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "RATE_LIMITED",
				"message": "too many requests, slow down",
			},
		})
	}
	return c.Next()
}
