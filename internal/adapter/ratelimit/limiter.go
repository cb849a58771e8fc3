// Package ratelimit throttles mutations per principal with a Redis fixed window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result describes the caller's standing in the current window.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *logger.Logger
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewLimiter(client *redis.Client, limit int, window time.Duration, log *logger.Logger) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
		logger: log.Named("RateLimiter"),
	}
}

// Allow records one request for key. The counter and its expiry are set in one pipeline.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now()
	windowStart := now.Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, windowStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("Rate limit counter update failed", zap.String("key", key), zap.Error(err))
		return Result{}, fmt.Errorf("rate limit: %w", err)
	}

	count := int(incr.Val())
	res := Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: l.limit - count,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = windowStart.Add(l.window).Sub(now)
		l.logger.Warn("Rate limit exceeded", zap.String("key", key), zap.Int("count", count))
	}
	return res, nil
}
