package service

import (
	"context"
	"time"

	rplatform "contest-engine-backend/internal/platform/redis"
)

// RedisLocker implements Locker with a SET NX lock per key. The TTL keeps
// a crashed holder from wedging the contest forever.
type RedisLocker struct {
	client *rplatform.Client
}

func NewRedisLocker(client *rplatform.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyLocked
	}
	return nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}
