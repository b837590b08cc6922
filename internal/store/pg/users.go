package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// ─────────────────────────────
// Users
// ─────────────────────────────

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `
SELECT id, email, email_confirmed, phone_number, phone_confirmed,
       name, given_name, family_name, picture, locale,
       addr_street, addr_locality, addr_region, addr_postal_code, addr_country
FROM app_user
WHERE id = $1;
`
	var (
		u    repository.User
		addr repository.Address
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.EmailConfirmed, &u.PhoneNumber, &u.PhoneConfirmed,
		&u.Name, &u.GivenName, &u.FamilyName, &u.Picture, &u.Locale,
		&addr.StreetAddress, &addr.Locality, &addr.Region, &addr.PostalCode, &addr.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if addr != (repository.Address{}) {
		u.Address = &addr
	}

	roles, err := r.roleNames(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *userRepo) roleNames(ctx context.Context, userID string) ([]string, error) {
	const q = `
SELECT ro.name
FROM user_role ur
JOIN role ro ON ro.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY ro.name;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ─────────────────────────────
// RBAC
// ─────────────────────────────

type rbacRepo struct {
	pool *pgxpool.Pool
}

func (r *rbacRepo) GetRolesByNames(ctx context.Context, names []string) ([]repository.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, name, description, permissions
FROM role
WHERE lower(name) = ANY($1)
ORDER BY name;
`
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, normLower(n))
	}
	rows, err := r.pool.Query(ctx, q, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Role
	for rows.Next() {
		var ro repository.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Permissions); err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}
