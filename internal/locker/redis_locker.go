package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance lock on SET NX with an owner token.
type RedisLocker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisLocker(client *redis.Client, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, log: log}
}

// TryLock reports whether the lock was acquired and, if so, the token that
// Unlock needs.
func (l *RedisLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	lockValue := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, lockValue, expiration).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !acquired {
		l.log.Debug("lock busy", zap.String("key", key))
		return false, "", nil
	}
	l.log.Debug("lock acquired", zap.String("key", key), zap.Duration("ttl", expiration))
	return true, lockValue, nil
}

// Unlock releases the lock if lockValue still owns it. A lock that already
// expired is not an error.
func (l *RedisLocker) Unlock(ctx context.Context, key, lockValue string) error {
	deleted, err := unlockScript.Run(ctx, l.client, []string{key}, lockValue).Int()
	if err != nil {
		return fmt.Errorf("redis unlock %s: %w", key, err)
	}
	if deleted == 0 {
		l.log.Warn("lock expired or taken over before unlock", zap.String("key", key))
	}
	return nil
}

// Connect opens and pings a Redis client.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
