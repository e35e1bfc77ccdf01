// Package loginguard throttles password guessing. Login attempts are counted
// per subject inside a fixed window before the password is checked; once the
// count passes the limit further attempts are refused until the window
// lapses. A successful login clears the count.
package loginguard

import (
	"context"
	"strings"
	"time"
)

// Result describes the state of one subject's window.
type Result struct {
	Allowed    bool
	Attempts   int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts login attempts.
type Limiter interface {
	// Reserve atomically counts one attempt and reports whether it may
	// proceed. Concurrent callers never observe the same count.
	Reserve(ctx context.Context, key string) (Result, error)

	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}

// Config bounds a limiter. MaxFailures attempts fit in one window.
type Config struct {
	MaxFailures int
	Window      time.Duration
}

func (c Config) result(attempts int, retryAfter time.Duration) Result {
	remaining := c.MaxFailures - attempts
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:   attempts <= c.MaxFailures,
		Attempts:  attempts,
		Remaining: remaining,
	}
	if !res.Allowed {
		res.RetryAfter = retryAfter
		if res.RetryAfter <= 0 {
			res.RetryAfter = c.Window
		}
	}
	return res
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
