package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"logicfy_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker 按 key 串行化读-改-写，Lock 返回释放函数
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// LocalLocker 进程内按 key 加锁，无人持有的 key 会被回收
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, kl, true) })
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock, held bool) {
	if held {
		<-kl.ch
	}
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// size 当前登记的 key 数量
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// 仅持有者可以删除锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLockTimeout = errors.New("lock wait timeout")

// RedisLocker 多实例部署时的分布式锁：先取进程内锁，再 SET NX PX 抢占 Redis 令牌
type RedisLocker struct {
	rdb     *redis.Client
	local   *LocalLocker
	ttl     time.Duration
	retry   time.Duration
	maxWait time.Duration
	prefix  string
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		rdb:     rdb,
		local:   NewLocalLocker(),
		ttl:     10 * time.Second,
		retry:   20 * time.Millisecond,
		maxWait: 10 * time.Second,
		prefix:  "logicfy:lock:",
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			unlockLocal()
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			unlockLocal()
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 释放不受调用方 ctx 取消影响
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := unlockScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil {
				logger.Log.Warn("Failed to release redis lock, waiting for TTL",
					zap.String("key", redisKey),
					zap.Duration("ttl", l.ttl),
					zap.Error(err))
			}
			unlockLocal()
		})
	}, nil
}
