package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	rplatform "contest-engine-backend/internal/platform/redis"
	"contest-engine-backend/internal/platform/vk"
)

// AccountCache is a read-through cache for token → account resolution.
// It replaces ad hoc process-global lookup maps: the cache is owned by
// whoever constructs it and invalidation is explicit.
type AccountCache struct {
	client  *rplatform.Client
	ttl     time.Duration
	resolve func(ctx context.Context) (*vk.Account, error)
}

func NewAccountCache(client *rplatform.Client, ttl time.Duration, resolve func(ctx context.Context) (*vk.Account, error)) *AccountCache {
	return &AccountCache{client: client, ttl: ttl, resolve: resolve}
}

// Tokens never hit Redis in the clear.
func (c *AccountCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("account:token:%s", hex.EncodeToString(sum[:8]))
}

// Get returns the account behind the token, resolving and caching it on miss.
func (c *AccountCache) Get(ctx context.Context, token string) (*vk.Account, error) {
	key := c.key(token)

	if v, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var acc vk.Account
		if err := json.Unmarshal(v, &acc); err == nil {
			return &acc, nil
		}
	}

	acc, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(acc); err == nil {
		_ = c.client.Set(ctx, key, b, c.ttl).Err()
	}
	return acc, nil
}

// Invalidate drops the cached account for the token.
func (c *AccountCache) Invalidate(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}
