package loginguard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_RefusesAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxFailures: 3, Window: time.Minute})

	for i := 1; i <= 3; i++ {
		res, err := l.Reserve(ctx, "user@test.com")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i)
		assert.Equal(t, i, res.Attempts)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := l.Reserve(ctx, "user@test.com")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestMemoryLimiter_KeysAreNormalized(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxFailures: 1, Window: time.Minute})

	_, err := l.Reserve(ctx, "User@Test.com")
	require.NoError(t, err)
	res, err := l.Reserve(ctx, "  user@test.com ")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = l.Reserve(ctx, "other@test.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxFailures: 1, Window: time.Minute})

	_, err := l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	res, err := l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	require.NoError(t, l.Reset(ctx, "a@test.com"))

	res, err = l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Attempts)
}

func TestMemoryLimiter_WindowExpires(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxFailures: 1, Window: 50 * time.Millisecond})

	_, err := l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	res, err := l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(120 * time.Millisecond)

	res, err = l.Reserve(ctx, "a@test.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Attempts)
}

func TestMemoryLimiter_ConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxFailures: 3, Window: time.Minute})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
		seen    = map[int]bool{}
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Reserve(ctx, "race@test.com")
			require.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			seen[res.Attempts] = true
			if res.Allowed {
				allowed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, allowed)
	assert.Len(t, seen, 50, "every reservation gets its own count")
}

func TestConfig_Result(t *testing.T) {
	cfg := Config{MaxFailures: 2, Window: time.Minute}

	assert.Equal(t, Result{Allowed: true, Attempts: 1, Remaining: 1}, cfg.result(1, 10*time.Second))
	assert.Equal(t, Result{Allowed: true, Attempts: 2, Remaining: 0}, cfg.result(2, 10*time.Second))

	res := cfg.result(5, 0)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestRedisLimiter_Keys(t *testing.T) {
	l := NewRedisLimiter(nil, "", Config{MaxFailures: 1, Window: time.Minute})
	assert.Equal(t, "petclinic:login:fail:a@test.com", l.redisKey(" A@Test.com "))

	l = NewRedisLimiter(nil, "custom:", Config{})
	assert.Equal(t, "custom:john_doe", l.redisKey("John Doe"))
}

func TestRedisLimiter_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	l := NewRedisLimiter(client, "", Config{MaxFailures: 3, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Reserve(ctx, "a@test.com")
	assert.Error(t, err)

	assert.Error(t, l.Reset(ctx, "a@test.com"))
}
