package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "github.com/janisto/codestats/internal/platform/logging"
)

const (
	redisKeyPrefix = "codestats:lock:"
	pollInterval   = 100 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock that another instance re-acquired is never removed.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX PX. The TTL bounds how long a crashed
// holder can block others.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis returns a Redis locker. wait has the same meaning as for NewLocal.
func NewRedis(client redis.UniversalClient, ttl, wait time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, wait: wait}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	redisKey := redisKeyPrefix + key

	var deadline time.Time
	if r.wait > 0 {
		deadline = time.Now().Add(r.wait)
	}

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
		}
		if ok {
			return r.releaser(ctx, redisKey, token), nil
		}
		if r.wait == 0 || (!deadline.IsZero() && time.Now().After(deadline)) {
			return nil, ErrLocked
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Redis) releaser(ctx context.Context, redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release anyway.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				applog.LogWarn(ctx, "lock release failed", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating lock token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

var _ Locker = (*Redis)(nil)
