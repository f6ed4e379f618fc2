package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttlePrefix = "throttle:login:"

// LoginThrottle counts login attempts per key in fixed windows.
// Key format: throttle:login:<key>
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginThrottle allows limit attempts per window for each key.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, limit: int64(limit), window: window}
}

// Allow records an attempt and reports whether it is within the limit. When
// it is not, the remaining time of the window is returned.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if t.limit <= 0 {
		return true, 0, nil
	}

	k := throttlePrefix + key
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, t.window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("login throttle: %w", err)
	}

	if incr.Val() > t.limit {
		retry := ttl.Val()
		if retry <= 0 {
			retry = t.window
		}
		return false, retry, nil
	}
	return true, 0, nil
}

// Reset forgets the attempts recorded for key.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, throttlePrefix+key).Err(); err != nil {
		return fmt.Errorf("login throttle reset: %w", err)
	}
	return nil
}
