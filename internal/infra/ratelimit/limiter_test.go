package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"authcore/config"
	domainerrors "authcore/internal/domain/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisLimiter_BlocksAfterLimit(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := NewRedisLimiter(client, 3, time.Minute, discardLogger())
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.Allow(ctx, "login:test@example.com"))
	}

	err := limiter.Allow(ctx, "login:test@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrTooManyAttempts)

	require.NoError(t, limiter.Allow(ctx, "login:other@example.com"))
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRedisLimiter(client, 1, time.Minute, discardLogger())
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "k"))
	assert.ErrorIs(t, limiter.Allow(ctx, "k"), domainerrors.ErrTooManyAttempts)

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"k"))
	mr.FastForward(time.Minute + time.Second)

	require.NoError(t, limiter.Allow(ctx, "k"))
}

func TestRedisLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRedisLimiter(client, 1, time.Minute, discardLogger())
	mr.Close()

	ctx := context.Background()
	assert.NoError(t, limiter.Allow(ctx, "k"))
	assert.NoError(t, limiter.Allow(ctx, "k"))
}

func TestRedisLimiter_ZeroLimitDisables(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := NewRedisLimiter(client, 0, time.Minute, discardLogger())

	for range 5 {
		assert.NoError(t, limiter.Allow(context.Background(), "k"))
	}
}

func TestNewAttemptLimiter_Disabled(t *testing.T) {
	limiter := NewAttemptLimiter(Params{
		Lc:     fxtest.NewLifecycle(t),
		Config: &config.Config{},
		Logger: discardLogger(),
	})

	assert.IsType(t, noopLimiter{}, limiter)
	assert.NoError(t, limiter.Allow(context.Background(), "k"))
}

func TestNewAttemptLimiter_Enabled(t *testing.T) {
	mr := miniredis.RunT(t)
	lc := fxtest.NewLifecycle(t)

	limiter := NewAttemptLimiter(Params{
		Lc: lc,
		Config: &config.Config{RateLimit: &config.RateLimitConfig{
			Enabled:     true,
			Addr:        mr.Addr(),
			MaxAttempts: 1,
			Window:      time.Minute,
		}},
		Logger: discardLogger(),
	})
	lc.RequireStart()
	defer lc.RequireStop()

	ctx := context.Background()
	require.NoError(t, limiter.Allow(ctx, "k"))
	assert.ErrorIs(t, limiter.Allow(ctx, "k"), domainerrors.ErrTooManyAttempts)
}
