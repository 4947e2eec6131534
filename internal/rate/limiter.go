// Package rate implementa rate limiting de ventana fija por clave (IP del cliente).
package rate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

// Result es la decisión del limiter para un hit.
type Result struct {
	Allowed     bool
	Limit       int64
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

// Limiter cuenta un hit para key y decide si se permite.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func decide(hits, max int64, left time.Duration) Result {
	res := Result{Allowed: hits <= max, Limit: max, CurrentHits: hits, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = left
	}
	return res
}

func windowLeft(now time.Time, window time.Duration) time.Duration {
	return now.Truncate(window).Add(window).Sub(now)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE) compartido entre réplicas.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), now.Truncate(l.window).Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}
	return decide(incr.Val(), l.max, windowLeft(now, l.window)), nil
}

// MemoryLimiter es el equivalente in-process sobre go-cache (una sola réplica).
type MemoryLimiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	k := fmt.Sprintf("%s:%d", key, now.Truncate(l.window).Unix())

	l.mu.Lock()
	defer l.mu.Unlock()

	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// primer hit de la ventana
		hits = 1
		l.c.Set(k, hits, l.window)
	}
	return decide(hits, l.max, windowLeft(now, l.window)), nil
}
