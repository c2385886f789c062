package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cardguard/internal/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL           = 10 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
	releaseTimeout       = time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a lock as a redis key set with NX and an expiry, so a
// crashed holder cannot block the key forever.
type RedisLocker struct {
	client        *redis.Client
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// Option configures the RedisLocker.
type Option func(*RedisLocker)

func WithLogger(logger *zap.Logger) Option {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, opts ...Option) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	l := &RedisLocker{
		client:        client,
		prefix:        "lock:",
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}, nil
}

// release deletes the key if it still holds token. It runs on a fresh
// context since the caller's may already be done. A failed release leaves
// the key held until its expiry.
func (l *RedisLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int64()
	switch {
	case err != nil:
		l.logger.Error("lock release failed",
			logging.MaskedKey("key", redisKey),
			zap.Duration("held_until_expiry", l.ttl),
			zap.Error(err),
		)
	case deleted == 0:
		l.logger.Warn("lock expired before release", logging.MaskedKey("key", redisKey))
	}
}
