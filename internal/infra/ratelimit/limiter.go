// Package ratelimit throttles credential attempts per key.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"authcore/config"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/lifecycle"
	"authcore/internal/domain/service"
	"authcore/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	keyPrefix      = "authcore:attempts:"
	defaultTimeout = 250 * time.Millisecond
)

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) error { return nil }

// Params holds dependencies for AttemptLimiter, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewAttemptLimiter returns a redis fixed-window limiter when rateLimit is enabled, otherwise a no-op.
func NewAttemptLimiter(params Params) service.AttemptLimiter {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled {
		params.Logger.Info("Attempt limiting disabled")

		return noopLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	limiter := NewRedisLimiter(client, cfg.MaxAttempts, cfg.Window, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping rate limit redis")
			}

			return nil
		},
		OnStop: func(context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return limiter
}

// RedisLimiter counts attempts per key in a fixed window using INCR and EXPIRE.
type RedisLimiter struct {
	client  redis.Cmdable
	limit   int
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisLimiter builds a limiter allowing limit attempts per window for each key.
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration, logger *slog.Logger) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}

	return &RedisLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		timeout: defaultTimeout,
		logger:  logger,
	}
}

// Allow records an attempt for key and returns ErrTooManyAttempts once the window's budget is spent.
// Redis failures let the attempt through.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) error {
	if rl.limit <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := keyPrefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logRedisError(ctx, "incr", err)

		return nil
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.logRedisError(ctx, "expire", err)
		}
	}

	if counter > int64(rl.limit) {
		return domainerrors.ErrTooManyAttempts
	}

	return nil
}

func (rl *RedisLimiter) logRedisError(ctx context.Context, op string, err error) {
	if rl.logger == nil {
		return
	}

	rl.logger.ErrorContext(ctx, "Rate limiter redis error", slog.String("op", op), slog.Any("error", err))
}
