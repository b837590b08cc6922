// Package memory implementa store.DataAccess en memoria.
//
// Es el driver de desarrollo/testing: sin persistencia, seedable, y con la
// misma semántica de errores que el driver postgres (ErrNotFound, etc).
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// Store guarda todo bajo un RWMutex único. Suficiente para dev/test.
type Store struct {
	mu       sync.RWMutex
	scopes   map[string]repository.Scope       // key: name
	clients  map[string]repository.Client      // key: client_id
	mappings map[string]repository.ClaimMapping // key: scope|claim_type
	consents map[string]repository.Consent     // key: user|client
	users    map[string]repository.User        // key: id
	roles    map[string]repository.Role        // key: name
	audits   []repository.AuditEvent
}

func New() *Store {
	return &Store{
		scopes:   make(map[string]repository.Scope),
		clients:  make(map[string]repository.Client),
		mappings: make(map[string]repository.ClaimMapping),
		consents: make(map[string]repository.Consent),
		users:    make(map[string]repository.User),
		roles:    make(map[string]repository.Role),
	}
}

func (s *Store) Scopes() repository.ScopeRepository              { return (*scopeRepo)(s) }
func (s *Store) Clients() repository.ClientRepository            { return (*clientRepo)(s) }
func (s *Store) ClaimMappings() repository.ClaimMappingRepository { return (*mappingRepo)(s) }
func (s *Store) Consents() repository.ConsentRepository          { return (*consentRepo)(s) }
func (s *Store) Users() repository.UserRepository                { return (*userRepo)(s) }
func (s *Store) RBAC() repository.RBACRepository                 { return (*rbacRepo)(s) }
func (s *Store) Audit() repository.AuditRepository               { return (*auditRepo)(s) }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// AuditEvents retorna una copia de los eventos insertados (para tests).
func (s *Store) AuditEvents() []repository.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.AuditEvent, len(s.audits))
	copy(out, s.audits)
	return out
}

// PutUser agrega o reemplaza un usuario (seed/tests).
func (s *Store) PutUser(u repository.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutRole agrega o reemplaza un rol (seed/tests).
func (s *Store) PutRole(r repository.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[strings.ToLower(r.Name)] = r
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ─────────────────────────────
// Scopes
// ─────────────────────────────

type scopeRepo Store

func (r *scopeRepo) GetByName(_ context.Context, name string) (*repository.Scope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sc, ok := r.scopes[norm(name)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := sc
	return &out, nil
}

func (r *scopeRepo) List(context.Context) ([]repository.Scope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Scope, 0, len(r.scopes))
	for _, sc := range r.scopes {
		out = append(out, sc)
	}
	sortScopes(out)
	return out, nil
}

func (r *scopeRepo) Upsert(_ context.Context, input repository.ScopeInput) (*repository.Scope, error) {
	name := norm(input.Name)
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	sc, ok := r.scopes[name]
	if !ok {
		sc = repository.Scope{ID: uuid.NewString(), Name: name, CreatedAt: now}
	}
	sc.DisplayName = input.DisplayName
	sc.Description = input.Description
	sc.Required = input.Required
	sc.DisplayOrder = input.DisplayOrder
	sc.Category = input.Category
	if ok {
		sc.UpdatedAt = &now
	}
	r.scopes[name] = sc
	out := sc
	return &out, nil
}

func sortScopes(scopes []repository.Scope) {
	// DisplayOrder asc, luego nombre. Orden estable para la consent screen.
	for i := 1; i < len(scopes); i++ {
		for j := i; j > 0 && scopeLess(scopes[j], scopes[j-1]); j-- {
			scopes[j], scopes[j-1] = scopes[j-1], scopes[j]
		}
	}
}

func scopeLess(a, b repository.Scope) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	return a.Name < b.Name
}

// ─────────────────────────────
// Clients
// ─────────────────────────────

type clientRepo Store

func (r *clientRepo) Get(_ context.Context, clientID string) (*repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *clientRepo) Upsert(_ context.Context, input repository.ClientInput) (*repository.Client, error) {
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[input.ClientID]
	if !ok {
		c = repository.Client{ID: uuid.NewString(), ClientID: input.ClientID}
	}
	c.Name = input.Name
	c.Type = input.Type
	c.RedirectURIs = append([]string(nil), input.RedirectURIs...)
	c.AllowedScopes = append([]string(nil), input.AllowedScopes...)
	c.RequiredScopes = append([]string(nil), input.RequiredScopes...)
	if input.Secret != "" {
		// El hasheo ocurre en la capa de seed/admin; acá se guarda tal cual.
		c.SecretHash = input.Secret
	}
	r.clients[input.ClientID] = c
	out := c
	return &out, nil
}

// ─────────────────────────────
// Claim mappings
// ─────────────────────────────

type mappingRepo Store

func mappingKey(scope, claimType string) string {
	return norm(scope) + "|" + claimType
}

func (r *mappingRepo) ListByScopes(_ context.Context, names []string) ([]repository.ClaimMapping, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[norm(n)] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.ClaimMapping
	for _, m := range r.mappings {
		if _, ok := want[m.ScopeName]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *mappingRepo) List(context.Context) ([]repository.ClaimMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.ClaimMapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		out = append(out, m)
	}
	return out, nil
}

func (r *mappingRepo) Upsert(_ context.Context, input repository.ClaimMappingInput) (*repository.ClaimMapping, error) {
	if norm(input.ScopeName) == "" || strings.TrimSpace(input.ClaimType) == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := mappingKey(input.ScopeName, input.ClaimType)
	m, ok := r.mappings[key]
	if !ok {
		m = repository.ClaimMapping{ID: uuid.NewString()}
	}
	m.ScopeName = norm(input.ScopeName)
	m.ClaimType = input.ClaimType
	m.Attribute = input.Attribute
	m.DataType = input.DataType
	m.AlwaysInclude = input.AlwaysInclude
	r.mappings[key] = m
	out := m
	return &out, nil
}

// ─────────────────────────────
// Consents
// ─────────────────────────────

type consentRepo Store

func consentKey(userID, clientID string) string { return userID + "|" + clientID }

func (r *consentRepo) Upsert(_ context.Context, userID, clientID string, scopes []string) (*repository.Consent, error) {
	if userID == "" || clientID == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	key := consentKey(userID, clientID)
	c, ok := r.consents[key]
	if !ok {
		c = repository.Consent{ID: uuid.NewString(), UserID: userID, ClientID: clientID, GrantedAt: now}
	}
	c.Scopes = append([]string(nil), scopes...)
	c.UpdatedAt = now
	c.RevokedAt = nil
	r.consents[key] = c
	out := c
	return &out, nil
}

func (r *consentRepo) Get(_ context.Context, userID, clientID string) (*repository.Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consents[consentKey(userID, clientID)]
	if !ok || c.RevokedAt != nil {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *consentRepo) Revoke(_ context.Context, userID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := consentKey(userID, clientID)
	c, ok := r.consents[key]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	c.RevokedAt = &now
	r.consents[key] = c
	return nil
}

// ─────────────────────────────
// Users / RBAC
// ─────────────────────────────

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

type rbacRepo Store

func (r *rbacRepo) GetRolesByNames(_ context.Context, names []string) ([]repository.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Role
	for _, n := range names {
		if role, ok := r.roles[norm(n)]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

// ─────────────────────────────
// Audit
// ─────────────────────────────

type auditRepo Store

func (r *auditRepo) Insert(_ context.Context, ev repository.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	r.audits = append(r.audits, ev)
	return nil
}
