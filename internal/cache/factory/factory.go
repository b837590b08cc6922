// Package factory instancia el backend de cache según configuración.
package factory

import (
	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/cache/memory"
	"github.com/dropDatabas3/scopegate/internal/cache/redis"
)

// New crea un cache.Cache según cfg.Kind. Default: memory.
func New(cfg cache.Config) cache.Cache {
	switch cfg.Kind {
	case "redis":
		return redis.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.DefaultTTL)
	case "memory", "":
		return memory.New(cfg.DefaultTTL)
	default:
		return memory.New(cfg.DefaultTTL)
	}
}
