package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// ─────────────────────────────
// Consents
// ─────────────────────────────

type consentRepo struct {
	pool *pgxpool.Pool
}

func (r *consentRepo) Upsert(ctx context.Context, userID, clientID string, scopes []string) (*repository.Consent, error) {
	if userID == "" || clientID == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `
INSERT INTO user_consent (id, user_id, client_id, scopes, granted_at, updated_at)
VALUES (gen_random_uuid(), $1, $2, $3, now(), now())
ON CONFLICT (user_id, client_id) DO UPDATE SET
	scopes = EXCLUDED.scopes,
	updated_at = now(),
	revoked_at = NULL
RETURNING id, user_id, client_id, scopes, granted_at, updated_at, revoked_at;
`
	var c repository.Consent
	err := r.pool.QueryRow(ctx, q, userID, clientID, scopes).
		Scan(&c.ID, &c.UserID, &c.ClientID, &c.Scopes, &c.GrantedAt, &c.UpdatedAt, &c.RevokedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consentRepo) Get(ctx context.Context, userID, clientID string) (*repository.Consent, error) {
	const q = `
SELECT id, user_id, client_id, scopes, granted_at, updated_at, revoked_at
FROM user_consent
WHERE user_id = $1 AND client_id = $2 AND revoked_at IS NULL;
`
	var c repository.Consent
	err := r.pool.QueryRow(ctx, q, userID, clientID).
		Scan(&c.ID, &c.UserID, &c.ClientID, &c.Scopes, &c.GrantedAt, &c.UpdatedAt, &c.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *consentRepo) Revoke(ctx context.Context, userID, clientID string) error {
	const q = `
UPDATE user_consent
SET revoked_at = now()
WHERE user_id = $1 AND client_id = $2 AND revoked_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, userID, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
