// Package catalog sirve el catálogo de políticas (clients, scopes, claim
// mappings) con una capa de cache TTL sobre los repositorios.
//
// El catálogo es read-only durante el request path; los writes llegan por
// flujos administrativos que llaman Invalidate(). Un request puede ver
// datos ligeramente stale dentro del TTL: aceptable, los cambios de
// política son acciones administrativas poco frecuentes.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	"github.com/dropDatabas3/scopegate/internal/policy"
)

// Prefijos de keys en cache. Invalidate() borra la familia completa.
const (
	keyPrefix        = "catalog:"
	keyPrefixClient  = keyPrefix + "client:"
	keyScopes        = keyPrefix + "scopes"
	keyClaimMappings = keyPrefix + "claim_mappings"
)

// Deps agrupa las dependencias del provider.
type Deps struct {
	Scopes   repository.ScopeRepository
	Clients  repository.ClientRepository
	Mappings repository.ClaimMappingRepository
	Cache    cache.Cache
	TTL      time.Duration // default 30s
}

// Provider expone lecturas cacheadas del catálogo.
// Implementa policy.ClientResolver.
type Provider struct {
	scopes   repository.ScopeRepository
	clients  repository.ClientRepository
	mappings repository.ClaimMappingRepository
	cache    cache.Cache
	ttl      time.Duration
	sf       singleflight.Group
}

func NewProvider(d Deps) *Provider {
	ttl := d.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Provider{
		scopes:   d.Scopes,
		clients:  d.Clients,
		mappings: d.Mappings,
		cache:    d.Cache,
		ttl:      ttl,
	}
}

// GetClient retorna el client por client_id. ErrNotFound si no existe.
func (p *Provider) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	key := keyPrefixClient + clientID
	if b, ok := p.cache.Get(key); ok {
		var c repository.Client
		if err := json.Unmarshal(b, &c); err == nil {
			return &c, nil
		}
		p.cache.Delete(key) // entrada corrupta
	}

	// singleflight: un solo load concurrente por client.
	v, err, _ := p.sf.Do(key, func() (any, error) {
		c, err := p.clients.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(c); err == nil {
			p.cache.Set(key, b, p.ttl)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*repository.Client), nil
}

// ResolveClientPolicy implementa policy.ClientResolver.
// Client inexistente => (nil, nil): el evaluador falla cerrado.
func (p *Provider) ResolveClientPolicy(ctx context.Context, clientID string) (*policy.ClientPolicy, error) {
	c, err := p.GetClient(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &policy.ClientPolicy{
		ClientID:       c.ClientID,
		AllowedScopes:  c.AllowedScopes,
		RequiredScopes: c.RequiredScopes,
	}, nil
}

// ListScopes retorna el catálogo completo de scopes.
func (p *Provider) ListScopes(ctx context.Context) ([]repository.Scope, error) {
	if b, ok := p.cache.Get(keyScopes); ok {
		var scopes []repository.Scope
		if err := json.Unmarshal(b, &scopes); err == nil {
			return scopes, nil
		}
		p.cache.Delete(keyScopes)
	}

	v, err, _ := p.sf.Do(keyScopes, func() (any, error) {
		scopes, err := p.scopes.List(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(scopes); err == nil {
			p.cache.Set(keyScopes, b, p.ttl)
		}
		return scopes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]repository.Scope), nil
}

// GetScope busca un scope por nombre dentro del catálogo cacheado.
// Retorna (nil, nil) si no existe: scope desconocido no es error.
func (p *Provider) GetScope(ctx context.Context, name string) (*repository.Scope, error) {
	scopes, err := p.ListScopes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scopes {
		if scopes[i].Name == name {
			return &scopes[i], nil
		}
	}
	return nil, nil
}

// MappingsForScopes retorna los claim mappings cubiertos por names.
// Cachea la lista completa y filtra en memoria: el catálogo es chico y así
// una sola key cubre cualquier combinación de scopes.
func (p *Provider) MappingsForScopes(ctx context.Context, names []string) ([]repository.ClaimMapping, error) {
	all, err := p.listMappings(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []repository.ClaimMapping
	for _, m := range all {
		if _, ok := want[m.ScopeName]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (p *Provider) listMappings(ctx context.Context) ([]repository.ClaimMapping, error) {
	if b, ok := p.cache.Get(keyClaimMappings); ok {
		var ms []repository.ClaimMapping
		if err := json.Unmarshal(b, &ms); err == nil {
			return ms, nil
		}
		p.cache.Delete(keyClaimMappings)
	}

	v, err, _ := p.sf.Do(keyClaimMappings, func() (any, error) {
		ms, err := p.mappings.List(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(ms); err == nil {
			p.cache.Set(keyClaimMappings, b, p.ttl)
		}
		return ms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]repository.ClaimMapping), nil
}

// Invalidate expira la familia completa de keys del catálogo.
// Lo llama el flujo administrativo tras cualquier write de política.
func (p *Provider) Invalidate() {
	p.cache.DeletePrefix(keyPrefix)
}

// InvalidateClient expira solo la entrada de un client.
func (p *Provider) InvalidateClient(clientID string) {
	p.cache.Delete(keyPrefixClient + clientID)
}
