package pg

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// ─────────────────────────────
// Audit (append-only)
// ─────────────────────────────

type auditRepo struct {
	pool *pgxpool.Pool
}

func (r *auditRepo) Insert(ctx context.Context, ev repository.AuditEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO audit_event (id, type, subject_id, details, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, q, ev.ID, ev.Type, ev.SubjectID, ev.Details, ev.IPAddress, ev.UserAgent, ev.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func normLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
