package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 锁被其他进程持有
var ErrLockNotAcquired = errors.New("cache lock not acquired")

const lockRetryInterval = 50 * time.Millisecond

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 基于 SET NX PX 的分布式互斥锁
type Lock struct {
	key   string
	token string
}

// AcquireLock 在 wait 时间内尝试获取锁；Redis 未启用时返回空锁
func AcquireLock(ctx context.Context, key string, ttl, wait time.Duration) (*Lock, error) {
	if !Enabled() {
		return &Lock{}, nil
	}
	lock := &Lock{key: BuildKey(key), token: uuid.NewString()}
	deadline := time.Now().Add(wait)
	for {
		ok, err := redisClient.SetNX(ctx, lock.key, lock.token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return lock, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// Release 仅释放自己持有的锁
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.key == "" || !Enabled() {
		return nil
	}
	return releaseLockScript.Run(ctx, redisClient, []string{l.key}, l.token).Err()
}
