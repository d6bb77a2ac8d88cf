package redisinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-account-api/internal/pkg/id"
	"github.com/redis/go-redis/v9"
)

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SlidingWindowLimiter allows at most limit hits per key within window.
// Each hit is a member of a sorted set scored by its timestamp.
type SlidingWindowLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

// Allow records a hit for key and reports whether it is within the limit.
// Rejected hits still count towards the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	redisKey := l.prefix + key
	floor := strconv.FormatInt(now.Add(-l.window).UnixMicro(), 10)

	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+floor)
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: id.New()})
		card = pipe.ZCard(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", redisKey, err)
	}
	return card.Val() <= int64(l.limit), nil
}
