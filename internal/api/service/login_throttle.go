package service

import (
	"context"
	"fmt"
	"time"

	"analytics/pkg"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts login attempts per username over a fixed window.
type LoginThrottle interface {
	// Reserve counts an attempt before the password is checked. A positive
	// duration means the attempt is refused for that long.
	Reserve(ctx context.Context, username string) (time.Duration, error)
	Reset(ctx context.Context, username string) error
}

// reserveAttempt increments failed_attempts:<username> and reports the
// remaining lockout in milliseconds once the count passes the ceiling. A
// counter found without an expiry restarts at one.
//
// KEYS[1] counter key, ARGV[1] max attempts, ARGV[2] window in milliseconds.
var reserveAttempt = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
local max = tonumber(ARGV[1])
if ttl < 0 and n > 1 then
	redis.call('SET', KEYS[1], '1')
	n = 1
end
if n == 1 or n == max then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end
if n > max then
	return ttl
end
return 0
`)

// RedisLoginThrottle keeps the counter in failed_attempts:<username>. The
// increment and the lockout check run as one script, so concurrent attempts
// for the same user cannot all pass the ceiling.
type RedisLoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRedisLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func failedAttemptsKey(username string) string {
	return fmt.Sprintf("failed_attempts:%s", username)
}

func (slf *RedisLoginThrottle) Reserve(ctx context.Context, username string) (time.Duration, error) {
	ms, err := reserveAttempt.Run(ctx, slf.client, []string{failedAttemptsKey(username)}, slf.maxAttempts, slf.window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (slf *RedisLoginThrottle) Reset(ctx context.Context, username string) error {
	return pkg.RedisDelete(ctx, slf.client, failedAttemptsKey(username))
}
