package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const (
	defaultTenantRateLimit = 1000
	rateLimitWindow        = time.Minute
)

type RateLimitMiddleware struct {
	redis    *redis.Client
	config   *config.Config
	logger   *logger.Logger
	resolver *utils.TenantResolver
}

func NewRateLimitMiddleware(redis *redis.Client, config *config.Config, logger *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redis:    redis,
		config:   config,
		logger:   logger,
		resolver: utils.NewTenantResolver(),
	}
}

// TenantRateLimit limits requests per bound tenant. It must run after the tenant binder.
func (m *RateLimitMiddleware) TenantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := m.resolver.ResolveCurrentTenant(c.Request.Context())
		m.enforce(c, fmt.Sprintf("rate_limit:tenant:%s", tenantID), m.tenantRateLimit(), "Rate limit exceeded")
	}
}

// GlobalRateLimit implements global rate limiting based on IP
func (m *RateLimitMiddleware) GlobalRateLimit() gin.HandlerFunc {
	limit := m.config.GlobalRateLimit
	if limit <= 0 {
		limit = 10000
	}
	return func(c *gin.Context) {
		m.enforce(c, fmt.Sprintf("rate_limit:global:%s", c.ClientIP()), limit, "Global rate limit exceeded")
	}
}

// enforce counts the request against key in a fixed one-minute window.
// Redis failures let the request through.
func (m *RateLimitMiddleware) enforce(c *gin.Context, key string, limit int, message string) {
	ctx := c.Request.Context()
	reset := strconv.FormatInt(time.Now().Add(rateLimitWindow).Unix(), 10)

	current, err := m.redis.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		m.logger.Error("Redis error in rate limiting", err, zap.String("key", key))
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Reset", reset)

	if current >= limit {
		c.Header("X-RateLimit-Remaining", "0")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": message,
			"limit": limit,
			"reset": reset,
		})
		return
	}

	pipe := m.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		m.logger.Error("Redis pipeline error in rate limiting", err, zap.String("key", key))
	}

	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit-(current+1), 0)))
	c.Next()
}

func (m *RateLimitMiddleware) tenantRateLimit() int {
	if m.config.DefaultRateLimit > 0 {
		return m.config.DefaultRateLimit
	}
	return defaultTenantRateLimit
}
