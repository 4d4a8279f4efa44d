package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const MsgTooManyRequests = "Too many requests from this IP, please try again in an hour."

const redisTimeout = 500 * time.Millisecond

type RateLimitMiddleware struct {
	server *server.Server
	cfg    *config.RateLimitConfig
	store  middleware.RateLimiterStore
}

// NewRateLimitMiddleware counts requests in Redis when it is available so
// limits hold across instances, and in process memory otherwise.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit
	if cfg == nil {
		cfg = config.DefaultRateLimitConfig()
	}

	r := &RateLimitMiddleware{server: s, cfg: cfg}
	if s.Redis != nil {
		r.store = NewRedisRateLimitStore(s.Redis, cfg.Requests, cfg.Window, s.Logger)
	} else {
		r.store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
			Burst:     cfg.Requests,
			ExpiresIn: cfg.Window,
		})
	}
	return r
}

// Limit rejects clients that exceeded the configured requests per window.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(echo.Context) bool { return !r.cfg.Enabled },
		Store:   r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Unable to identify the client.")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("client", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError(MsgTooManyRequests)
		},
	})
}

// RecordRateLimitHit reports a rejected request to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimitStore is a fixed window counter per client kept in Redis.
// Redis failures let the request through.
type RedisRateLimitStore struct {
	client   *redis.Client
	requests int64
	window   time.Duration
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRedisRateLimitStore(client *redis.Client, requests int, window time.Duration, logger *zerolog.Logger) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client:   client,
		requests: int64(requests),
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *RedisRateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	bucket := s.now().UnixNano() / int64(s.window)
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, bucket)

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error().Err(err).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return count.Val() <= s.requests, nil
}
