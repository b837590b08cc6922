package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dropDatabas3/scopegate/internal/observability/logger"
)

// Migrate aplica las migraciones *.sql del FS en orden ascendente de nombre.
// El esquema usa IF NOT EXISTS en todas sus sentencias: re-aplicar sobre una
// base ya migrada es un no-op.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) error {
	files, err := migrationFiles(fsys)
	if err != nil {
		return fmt.Errorf("pg: list migrations: %w", err)
	}
	log := logger.Named("store.pg.migrate")
	for _, name := range files {
		sql, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("pg: read %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: apply %s: %w", name, err)
		}
		log.Info("migration applied", logger.String("file", name))
	}
	return nil
}

// migrationFiles lista los *.sql del FS en orden ascendente.
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
