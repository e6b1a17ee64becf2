package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock implements ports.RunLock with SET NX and an owner token.
type RunLock struct {
	client goredis.UniversalClient
	prefix string
}

// NewRunLock creates a new Redis-backed run lock.
func NewRunLock(client goredis.UniversalClient) *RunLock {
	return &RunLock{
		client: client,
		prefix: "lock:",
	}
}

// Acquire takes the named lock for ttl. ok is false when another holder owns it.
func (l *RunLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	result, err := l.client.SetArgs(ctx, l.prefix+name, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis lock acquire: %w", err)
	}
	return token, result == "OK", nil
}

// Release drops the lock if token still owns it. An expired or stolen lock is left alone.
func (l *RunLock) Release(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + name}, token).Err(); err != nil {
		return fmt.Errorf("redis lock release: %w", err)
	}
	return nil
}
