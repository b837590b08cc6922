package claims

import (
	"reflect"
	"testing"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

func testUser() *repository.User {
	return &repository.User{
		ID:             "u-1",
		Email:          "ana@example.com",
		EmailConfirmed: true,
		Name:           "Ana García",
		GivenName:      "Ana",
		Address:        &repository.Address{Country: "AR"},
		Roles:          []string{"admin", "auditor"},
	}
}

func TestEnrichPermissions_DedupesAcrossRoles(t *testing.T) {
	id := NewIdentity()
	EnrichPermissions(id, []repository.Role{
		{Name: "admin", Permissions: "users:read, users:write ,users:read"},
		{Name: "auditor", Permissions: "users:read,audit:read"},
	})

	got := id.Values(ClaimTypePermission)
	want := []string{"users:read", "users:write", "audit:read"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("permissions = %v, want %v", got, want)
	}

	// Idempotente: repetir no agrega nada.
	EnrichPermissions(id, []repository.Role{{Permissions: "users:read"}})
	if n := len(id.Values(ClaimTypePermission)); n != 3 {
		t.Fatalf("expected 3 permission claims after re-enrich, got %d", n)
	}
}

func TestEnrichScopeClaims_BooleanNormalized(t *testing.T) {
	// Escenario: mapping email_verified sobre email_confirmed, scope email otorgado.
	id := NewIdentity()
	mappings := []repository.ClaimMapping{
		{ScopeName: "email", ClaimType: "email_verified", Attribute: "email_confirmed", DataType: repository.ClaimDataTypeBoolean},
	}
	EnrichScopeClaims(id, testUser(), []string{"email"}, []string{"email"}, mappings)

	if got := id.Values("email_verified"); !reflect.DeepEqual(got, []string{"true"}) {
		t.Fatalf("email_verified = %v, want [true]", got)
	}
}

func TestEnrichScopeClaims_ScopeNotGrantedSkipped(t *testing.T) {
	id := NewIdentity()
	mappings := []repository.ClaimMapping{
		{ScopeName: "email", ClaimType: "email", Attribute: "email", DataType: repository.ClaimDataTypeString},
	}
	// email pedido pero no otorgado, sin AlwaysInclude => nada.
	EnrichScopeClaims(id, testUser(), []string{"openid"}, []string{"openid", "email"}, mappings)
	if id.Has("email") {
		t.Fatal("claim added for non-granted scope")
	}
}

func TestEnrichScopeClaims_AlwaysIncludeNeedsRequestContext(t *testing.T) {
	mappings := []repository.ClaimMapping{
		{ScopeName: "email", ClaimType: "email", Attribute: "email", DataType: repository.ClaimDataTypeString, AlwaysInclude: true},
	}

	// AlwaysInclude + scope presente en el request (aunque no otorgado) => entra.
	id := NewIdentity()
	EnrichScopeClaims(id, testUser(), []string{"openid"}, []string{"openid", "email"}, mappings)
	if !id.Has("email") {
		t.Fatal("always-include claim missing despite scope in request context")
	}

	// AlwaysInclude pero scope ni siquiera pedido => fuera.
	id = NewIdentity()
	EnrichScopeClaims(id, testUser(), []string{"openid"}, []string{"openid"}, mappings)
	if id.Has("email") {
		t.Fatal("claim added for scope absent from request context")
	}
}

func TestEnrichScopeClaims_EmptyValueSkippedUnlessAlwaysInclude(t *testing.T) {
	user := testUser()
	user.Picture = ""

	mappings := []repository.ClaimMapping{
		{ScopeName: "profile", ClaimType: "picture", Attribute: "picture", DataType: repository.ClaimDataTypeString},
	}
	id := NewIdentity()
	EnrichScopeClaims(id, user, []string{"profile"}, []string{"profile"}, mappings)
	if id.Has("picture") {
		t.Fatal("empty value emitted without AlwaysInclude")
	}

	mappings[0].AlwaysInclude = true
	id = NewIdentity()
	EnrichScopeClaims(id, user, []string{"profile"}, []string{"profile"}, mappings)
	if !id.Has("picture") {
		t.Fatal("AlwaysInclude mapping with empty value was skipped")
	}
}

func TestEnrichScopeClaims_FirstWriterWins(t *testing.T) {
	id := NewIdentity()
	id.SetIfAbsent("name", "preset")

	mappings := []repository.ClaimMapping{
		{ScopeName: "profile", ClaimType: "name", Attribute: "name", DataType: repository.ClaimDataTypeString},
	}
	EnrichScopeClaims(id, testUser(), []string{"profile"}, []string{"profile"}, mappings)
	if got := id.Values("name"); !reflect.DeepEqual(got, []string{"preset"}) {
		t.Fatalf("name = %v, first writer must win", got)
	}
}

func TestEnrichScopeClaims_TotalOverBadInput(t *testing.T) {
	id := NewIdentity()
	mappings := []repository.ClaimMapping{
		{ScopeName: "profile", ClaimType: "x", Attribute: "no.such.path", DataType: repository.ClaimDataTypeString},
		{ScopeName: "address", ClaimType: "country", Attribute: "address.country", DataType: repository.ClaimDataTypeString},
	}
	// Usuario nil: no panic, nada agregado.
	EnrichScopeClaims(id, nil, []string{"profile", "address"}, []string{"profile", "address"}, mappings)
	if n := len(id.Claims()); n != 0 {
		t.Fatalf("expected no claims for nil user, got %d", n)
	}

	// Usuario sin address: el path anidado degrada a omitido.
	user := testUser()
	user.Address = nil
	EnrichScopeClaims(id, user, []string{"address"}, []string{"address"}, mappings)
	if id.Has("country") {
		t.Fatal("nested path over nil intermediate must resolve to no value")
	}
}

func TestResolveAttribute(t *testing.T) {
	u := testUser()
	cases := []struct {
		path  string
		want  string
		found bool
	}{
		{"email", "ana@example.com", true},
		{"email_confirmed", "true", true},
		{"address.country", "AR", true},
		{"ADDRESS.COUNTRY", "AR", true}, // case-insensitive path
		{"family_name", "", false},      // atributo vacío
		{"unknown.attr", "", false},
	}
	for _, tc := range cases {
		got, found := ResolveAttribute(u, tc.path)
		if got != tc.want || found != tc.found {
			t.Fatalf("ResolveAttribute(%q) = (%q,%v), want (%q,%v)", tc.path, got, found, tc.want, tc.found)
		}
	}
}

func TestIdentity_ToMap(t *testing.T) {
	id := NewIdentity()
	id.SetIfAbsent("email_verified", "true")
	id.Add(ClaimTypePermission, "users:read")
	id.Add(ClaimTypePermission, "users:write")

	m := id.ToMap()
	if m["email_verified"] != "true" {
		t.Fatalf("email_verified = %v", m["email_verified"])
	}
	if got, ok := m[ClaimTypePermission].([]string); !ok || len(got) != 2 {
		t.Fatalf("permission = %v, want 2-element slice", m[ClaimTypePermission])
	}
}
