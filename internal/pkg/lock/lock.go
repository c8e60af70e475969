package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrNotHeld = errors.New("lock is not held")

const pollInterval = 100 * time.Millisecond

// Locker 导入互斥锁。Acquire 阻塞直到获得锁或 ctx 结束
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func() error, err error)
}

// LocalLocker 单进程内的互斥锁
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire ttl 在进程内无意义，忽略
func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func() error, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() error {
		err := ErrNotHeld
		once.Do(func() {
			<-ch
			err = nil
		})
		return err
	}, nil
}

// releaseScript 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript 仍由自己持有时续期
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker server 与 worker 分属不同进程时使用。
// 持有期间每 ttl/3 续期一次，导入耗时不受 ttl 限制；进程退出后锁在 ttl 内过期
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func() error, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	var once sync.Once
	go l.keepAlive(key, token, ttl, stop)

	return func() error {
		once.Do(func() { close(stop) })
		// 使用独立 context，调用方的 ctx 可能已取消
		n, err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}, nil
}

func (l *RedisLocker) keepAlive(key, token string, ttl time.Duration, stop <-chan struct{}) {
	interval := ttl / 3
	if interval < time.Millisecond {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		n, err := renewScript.Run(context.Background(), l.client, []string{key}, token, ttl.Milliseconds()).Int()
		if err != nil {
			log.Printf("lock %s: renew: %v", key, err)
			continue
		}
		if n == 0 {
			log.Printf("lock %s: lost before release", key)
			return
		}
	}
}
