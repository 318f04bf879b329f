// Package redis provides a distributed repositories.Locker backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/domain/repositories"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const defaultRetryInterval = 50 * time.Millisecond

// ApprovalLock implements repositories.Locker with SET NX PX.
type ApprovalLock struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	logger *slog.Logger
}

// NewApprovalLock connects to redisURL and verifies the connection
func NewApprovalLock(redisURL string, ttl time.Duration, logger *slog.Logger) (*ApprovalLock, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewApprovalLockWithClient(client, ttl, logger), nil
}

// NewApprovalLockWithClient creates a lock from an existing Redis client
func NewApprovalLockWithClient(client *goredis.Client, ttl time.Duration, logger *slog.Logger) *ApprovalLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ApprovalLock{
		client: client,
		prefix: "lock:",
		ttl:    ttl,
		retry:  defaultRetryInterval,
		logger: logger,
	}
}

// Acquire polls until the key is set or ctx is done.
// The lock expires after ttl even if never released.
func (l *ApprovalLock) Acquire(ctx context.Context, key string) (repositories.ReleaseFunc, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			l.logger.Debug("lock acquired", "key", redisKey)
			return l.releaser(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *ApprovalLock) releaser(redisKey, token string) repositories.ReleaseFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("release lock %s: %w", redisKey, err)
		}
		if n == 0 {
			l.logger.Warn("lock expired before release", "key", redisKey)
		}
		return nil
	}
}

// Close closes the Redis connection
func (l *ApprovalLock) Close() error {
	return l.client.Close()
}
