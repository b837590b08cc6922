package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	"github.com/dropDatabas3/scopegate/internal/validation"
)

// ─────────────────────────────
// Scopes
// ─────────────────────────────

type scopeRepo struct {
	pool *pgxpool.Pool
}

func (r *scopeRepo) GetByName(ctx context.Context, name string) (*repository.Scope, error) {
	const q = `
SELECT id, name, display_name, description, required, display_order, category, created_at, updated_at
FROM scope
WHERE name = $1;
`
	var s repository.Scope
	err := r.pool.QueryRow(ctx, q, strings.ToLower(strings.TrimSpace(name))).
		Scan(&s.ID, &s.Name, &s.DisplayName, &s.Description, &s.Required, &s.DisplayOrder, &s.Category, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *scopeRepo) List(ctx context.Context) ([]repository.Scope, error) {
	const q = `
SELECT id, name, display_name, description, required, display_order, category, created_at, updated_at
FROM scope
ORDER BY display_order ASC, name ASC;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Scope
	for rows.Next() {
		var s repository.Scope
		if err := rows.Scan(&s.ID, &s.Name, &s.DisplayName, &s.Description, &s.Required, &s.DisplayOrder, &s.Category, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *scopeRepo) Upsert(ctx context.Context, input repository.ScopeInput) (*repository.Scope, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if !validation.ValidScopeName(name) {
		return nil, repository.ErrInvalidInput
	}
	const q = `
INSERT INTO scope (id, name, display_name, description, required, display_order, category)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	description = EXCLUDED.description,
	required = EXCLUDED.required,
	display_order = EXCLUDED.display_order,
	category = EXCLUDED.category,
	updated_at = now()
RETURNING id, name, display_name, description, required, display_order, category, created_at, updated_at;
`
	var s repository.Scope
	err := r.pool.QueryRow(ctx, q, name, input.DisplayName, input.Description, input.Required, input.DisplayOrder, input.Category).
		Scan(&s.ID, &s.Name, &s.DisplayName, &s.Description, &s.Required, &s.DisplayOrder, &s.Category, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ─────────────────────────────
// Clients
// ─────────────────────────────

type clientRepo struct {
	pool *pgxpool.Pool
}

func (r *clientRepo) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
SELECT id, client_id, name, type, redirect_uris, allowed_scopes, required_scopes, secret_hash
FROM client
WHERE client_id = $1;
`
	var c repository.Client
	err := r.pool.QueryRow(ctx, q, clientID).
		Scan(&c.ID, &c.ClientID, &c.Name, &c.Type, &c.RedirectURIs, &c.AllowedScopes, &c.RequiredScopes, &c.SecretHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) Upsert(ctx context.Context, input repository.ClientInput) (*repository.Client, error) {
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `
INSERT INTO client (id, client_id, name, type, redirect_uris, allowed_scopes, required_scopes, secret_hash)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (client_id) DO UPDATE SET
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	redirect_uris = EXCLUDED.redirect_uris,
	allowed_scopes = EXCLUDED.allowed_scopes,
	required_scopes = EXCLUDED.required_scopes,
	secret_hash = CASE WHEN EXCLUDED.secret_hash <> '' THEN EXCLUDED.secret_hash ELSE client.secret_hash END
RETURNING id, client_id, name, type, redirect_uris, allowed_scopes, required_scopes, secret_hash;
`
	var c repository.Client
	err := r.pool.QueryRow(ctx, q,
		input.ClientID, input.Name, input.Type, input.RedirectURIs, input.AllowedScopes, input.RequiredScopes, input.Secret).
		Scan(&c.ID, &c.ClientID, &c.Name, &c.Type, &c.RedirectURIs, &c.AllowedScopes, &c.RequiredScopes, &c.SecretHash)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ─────────────────────────────
// Claim mappings
// ─────────────────────────────

type mappingRepo struct {
	pool *pgxpool.Pool
}

func (r *mappingRepo) ListByScopes(ctx context.Context, names []string) ([]repository.ClaimMapping, error) {
	const q = `
SELECT id, scope_name, claim_type, attribute, data_type, always_include
FROM claim_mapping
WHERE scope_name = ANY($1);
`
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(n)))
	}
	rows, err := r.pool.Query(ctx, q, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMappings(rows)
}

func (r *mappingRepo) List(ctx context.Context) ([]repository.ClaimMapping, error) {
	const q = `
SELECT id, scope_name, claim_type, attribute, data_type, always_include
FROM claim_mapping;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMappings(rows)
}

func (r *mappingRepo) Upsert(ctx context.Context, input repository.ClaimMappingInput) (*repository.ClaimMapping, error) {
	scope := strings.ToLower(strings.TrimSpace(input.ScopeName))
	if !validation.ValidScopeName(scope) || !validation.ValidClaimType(input.ClaimType) {
		return nil, repository.ErrInvalidInput
	}
	const q = `
INSERT INTO claim_mapping (id, scope_name, claim_type, attribute, data_type, always_include)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
ON CONFLICT (scope_name, claim_type) DO UPDATE SET
	attribute = EXCLUDED.attribute,
	data_type = EXCLUDED.data_type,
	always_include = EXCLUDED.always_include
RETURNING id, scope_name, claim_type, attribute, data_type, always_include;
`
	var m repository.ClaimMapping
	err := r.pool.QueryRow(ctx, q, scope, input.ClaimType, input.Attribute, input.DataType, input.AlwaysInclude).
		Scan(&m.ID, &m.ScopeName, &m.ClaimType, &m.Attribute, &m.DataType, &m.AlwaysInclude)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMappings(rows pgx.Rows) ([]repository.ClaimMapping, error) {
	var out []repository.ClaimMapping
	for rows.Next() {
		var m repository.ClaimMapping
		if err := rows.Scan(&m.ID, &m.ScopeName, &m.ClaimType, &m.Attribute, &m.DataType, &m.AlwaysInclude); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
