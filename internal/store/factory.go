package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/scopegate/internal/config"
	"github.com/dropDatabas3/scopegate/internal/store/memory"
	"github.com/dropDatabas3/scopegate/internal/store/pg"
)

// New construye el DataAccess según storage.driver.
func New(ctx context.Context, cfg *config.Config) (DataAccess, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return NewPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Storage.Driver)
	}
}

// NewPostgres construye el driver postgres con el tipo concreto expuesto:
// el flujo de migraciones necesita pg.Store, no el DataAccess genérico.
func NewPostgres(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	var lifetime time.Duration
	if s := cfg.Storage.Postgres.ConnMaxLifetime; s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("store: storage.postgres.conn_max_lifetime: %w", err)
		}
		lifetime = d
	}
	return pg.New(ctx, pg.Config{
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: lifetime,
	})
}
