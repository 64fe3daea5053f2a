package inflight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still carries our token.
// KEYS[1] = lock key
// ARGV[1] = token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares leases across service instances.
type RedisGuard struct {
	client    goredis.Cmdable
	ttl       time.Duration
	keyPrefix string
}

type RedisOption func(*RedisGuard)

// WithKeyPrefix sets the Redis key prefix (default "mentor:inflight:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(g *RedisGuard) { g.keyPrefix = prefix }
}

func NewRedisGuard(client goredis.Cmdable, ttl time.Duration, opts ...RedisOption) *RedisGuard {
	g := &RedisGuard{
		client:    client,
		ttl:       ttl,
		keyPrefix: "mentor:inflight:",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := g.keyPrefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("inflight/redis: acquire: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be canceled; release regardless.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, g.client, []string{redisKey}, token).Err()
		})
	}, nil
}
