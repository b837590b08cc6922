package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	"github.com/dropDatabas3/scopegate/internal/security/secret"
	"github.com/dropDatabas3/scopegate/internal/store/memory"
)

// Seed carga el catálogo estándar OIDC: scopes, claim mappings y un client de
// demo. Con el driver memory agrega además un usuario y roles de prueba.
// Idempotente: todo va por Upsert.
func Seed(ctx context.Context, da DataAccess) error {
	scopes := []repository.ScopeInput{
		{Name: "openid", DisplayName: "Sign in", Description: "Verify your identity", Required: true, DisplayOrder: 0, Category: "identity"},
		{Name: "profile", DisplayName: "Profile", Description: "Your basic profile information", DisplayOrder: 1, Category: "identity"},
		{Name: "email", DisplayName: "Email", Description: "Your email address", DisplayOrder: 2, Category: "identity"},
		{Name: "phone", DisplayName: "Phone", Description: "Your phone number", DisplayOrder: 3, Category: "identity"},
		{Name: "address", DisplayName: "Address", Description: "Your postal address", DisplayOrder: 4, Category: "identity"},
		{Name: "offline_access", DisplayName: "Offline access", Description: "Keep access while you are away", DisplayOrder: 5, Category: "session"},
	}
	for _, in := range scopes {
		if _, err := da.Scopes().Upsert(ctx, in); err != nil {
			return fmt.Errorf("seed: scope %s: %w", in.Name, err)
		}
	}

	mappings := []repository.ClaimMappingInput{
		{ScopeName: "profile", ClaimType: "name", Attribute: "name", DataType: repository.ClaimDataTypeString},
		{ScopeName: "profile", ClaimType: "given_name", Attribute: "given_name", DataType: repository.ClaimDataTypeString},
		{ScopeName: "profile", ClaimType: "family_name", Attribute: "family_name", DataType: repository.ClaimDataTypeString},
		{ScopeName: "profile", ClaimType: "picture", Attribute: "picture", DataType: repository.ClaimDataTypeString},
		{ScopeName: "profile", ClaimType: "locale", Attribute: "locale", DataType: repository.ClaimDataTypeString},
		{ScopeName: "email", ClaimType: "email", Attribute: "email", DataType: repository.ClaimDataTypeString, AlwaysInclude: true},
		{ScopeName: "email", ClaimType: "email_verified", Attribute: "email_confirmed", DataType: repository.ClaimDataTypeBoolean, AlwaysInclude: true},
		{ScopeName: "phone", ClaimType: "phone_number", Attribute: "phone_number", DataType: repository.ClaimDataTypeString},
		{ScopeName: "phone", ClaimType: "phone_number_verified", Attribute: "phone_confirmed", DataType: repository.ClaimDataTypeBoolean},
		{ScopeName: "address", ClaimType: "street_address", Attribute: "address.street_address", DataType: repository.ClaimDataTypeString},
		{ScopeName: "address", ClaimType: "locality", Attribute: "address.locality", DataType: repository.ClaimDataTypeString},
		{ScopeName: "address", ClaimType: "country", Attribute: "address.country", DataType: repository.ClaimDataTypeString},
	}
	for _, in := range mappings {
		if _, err := da.ClaimMappings().Upsert(ctx, in); err != nil {
			return fmt.Errorf("seed: mapping %s/%s: %w", in.ScopeName, in.ClaimType, err)
		}
	}

	hash, err := secret.Hash(secret.Default, "demo-secret")
	if err != nil {
		return fmt.Errorf("seed: hash client secret: %w", err)
	}
	if _, err := da.Clients().Upsert(ctx, repository.ClientInput{
		ClientID:       "demo-web",
		Name:           "Demo Web App",
		Type:           "confidential",
		RedirectURIs:   []string{"http://localhost:3000/callback"},
		AllowedScopes:  []string{"openid", "profile", "email"},
		RequiredScopes: []string{"openid"},
		Secret:         hash,
	}); err != nil {
		return fmt.Errorf("seed: client demo-web: %w", err)
	}

	if mem, ok := da.(*memory.Store); ok {
		seedMemoryFixtures(mem)
	}
	return nil
}

// seedMemoryFixtures agrega usuario y roles de prueba. Solo driver memory:
// en postgres los usuarios vienen del sistema de cuentas, no de este servicio.
func seedMemoryFixtures(mem *memory.Store) {
	mem.PutRole(repository.Role{
		ID:          "role-admin",
		Name:        "admin",
		Description: "Full administrative access",
		Permissions: "users:read,users:write,clients:read,clients:write",
	})
	mem.PutRole(repository.Role{
		ID:          "role-viewer",
		Name:        "viewer",
		Description: "Read-only access",
		Permissions: "users:read,clients:read",
	})
	mem.PutUser(repository.User{
		ID:             "u-demo",
		Email:          "demo@example.com",
		EmailConfirmed: true,
		Name:           "Demo User",
		GivenName:      "Demo",
		FamilyName:     "User",
		Locale:         "en-US",
		Address: &repository.Address{
			StreetAddress: "123 Main St",
			Locality:      "Springfield",
			Country:       "US",
		},
		Roles: []string{"admin"},
	})
}
