package loginguard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "petclinic:login:fail:"

// RedisLimiter keeps counters in redis so every replica sees the same
// window. Each window is a key with INCR and EXPIRE.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	cfg    Config
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string, cfg Config) *RedisLimiter {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisLimiter{client: client, prefix: prefix, cfg: cfg}
}

func (l *RedisLimiter) redisKey(key string) string {
	return l.prefix + normalizeKey(key)
}

// Reserve implements Limiter.
func (l *RedisLimiter) Reserve(ctx context.Context, key string) (Result, error) {
	k := l.redisKey(key)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("login guard reserve: %w", err)
	}

	window := ttl.Val()
	if incr.Val() == 1 || window < 0 {
		if err := l.client.Expire(ctx, k, l.cfg.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("login guard expire: %w", err)
		}
		window = l.cfg.Window
	}
	return l.cfg.result(int(incr.Val()), window), nil
}

// Reset implements Limiter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("login guard reset: %w", err)
	}
	return nil
}
