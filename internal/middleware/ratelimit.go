package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/developia-II/catalog-api/internal/config"
	"github.com/developia-II/catalog-api/utils"
)

const (
	rateLimitPrefix  = "/api"
	rateLimitMessage = "Too many requests from this IP, please try again later"
	storePrefix      = "catalog_rate_limit"
)

// NewRateLimiter builds the per-IP fixed window limiter for /api routes.
// Counters live in Redis when a URL is configured and in memory otherwise.
func NewRateLimiter(cfg config.RateLimitConfig) (gin.HandlerFunc, error) {
	store, err := newStore(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return RateLimit(limiter.New(store, limiter.Rate{Period: cfg.Window, Limit: cfg.Max})), nil
}

func newStore(redisURL string) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: storePrefix}
	if redisURL == "" {
		return memory.NewStoreWithOptions(opts), nil
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	store, err := sredis.NewStoreWithOptions(redis.NewClient(redisOpts), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	logrus.Info("Rate limiter using redis store")
	return store, nil
}

// RateLimit applies l to paths under /api. Rejections go through the error
// pipeline as 429s.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	handle := mgin.NewMiddleware(l,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			_ = c.Error(utils.NewAppError(rateLimitMessage, http.StatusTooManyRequests))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			_ = c.Error(fmt.Errorf("rate limiter: %w", err))
		}),
	)
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, rateLimitPrefix) {
			c.Next()
			return
		}
		handle(c)
	}
}
