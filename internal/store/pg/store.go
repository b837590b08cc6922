// Package pg implementa store.DataAccess sobre Postgres (pgx v5).
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

const pgUniqueViolation = "23505"

// Config del pool.
type Config struct {
	DSN             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// Store implementa store.DataAccess.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Scopes() repository.ScopeRepository               { return &scopeRepo{pool: s.pool} }
func (s *Store) Clients() repository.ClientRepository             { return &clientRepo{pool: s.pool} }
func (s *Store) ClaimMappings() repository.ClaimMappingRepository { return &mappingRepo{pool: s.pool} }
func (s *Store) Consents() repository.ConsentRepository           { return &consentRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepository                 { return &userRepo{pool: s.pool} }
func (s *Store) RBAC() repository.RBACRepository                  { return &rbacRepo{pool: s.pool} }
func (s *Store) Audit() repository.AuditRepository                { return &auditRepo{pool: s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }
func (s *Store) Close()                         { s.pool.Close() }

// isUniqueViolation mapea el código 23505 a ErrConflict.
func isUniqueViolation(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.Code == pgUniqueViolation
}
