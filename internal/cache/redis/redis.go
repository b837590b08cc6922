// Package redis implementa cache.Cache sobre go-redis.
package redis

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/scopegate/internal/cache"
)

type Cache struct {
	c          *rdb.Client
	defaultTTL time.Duration
}

func New(addr string, db int, defaultTTL time.Duration) cache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		c:          rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		defaultTTL: defaultTTL,
	}
}

func (r *Cache) Get(k string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), k).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Cache) Set(k string, v []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	_ = r.c.Set(context.Background(), k, v, ttl).Err()
}

func (r *Cache) Delete(k string) { _ = r.c.Del(context.Background(), k).Err() }

// DeletePrefix usa SCAN incremental para no bloquear redis con KEYS.
func (r *Cache) DeletePrefix(prefix string) {
	ctx := context.Background()
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			_ = r.c.Del(ctx, keys...).Err()
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
