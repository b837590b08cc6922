package policy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

func testCatalog() []repository.Scope {
	return []repository.Scope{
		{Name: "openid", Required: true},
		{Name: "profile"},
		{Name: "email"},
		{Name: "address"},
	}
}

func TestClassify_RequiredForceIncluded(t *testing.T) {
	reqs := BuildRequirements([]repository.Scope{
		{Name: "openid", Required: true},
		{Name: "profile", Required: true},
	}, nil)

	// Submission omite profile, pero está requerido: se fuerza igual.
	dec := Classify([]string{"openid", "profile"}, reqs, []string{"openid"})
	if !reflect.DeepEqual(dec.Allowed, []string{"openid", "profile"}) {
		t.Fatalf("allowed = %v", dec.Allowed)
	}
	if !reflect.DeepEqual(dec.Required, []string{"openid", "profile"}) {
		t.Fatalf("required = %v", dec.Required)
	}
	if dec.PartialGrant {
		t.Fatal("full grant flagged as partial")
	}
}

func TestClassify_PartialGrantBiconditional(t *testing.T) {
	reqs := BuildRequirements(testCatalog(), nil)

	// email pedido pero no otorgado (y no requerido) => rejected, partial.
	dec := Classify([]string{"openid", "profile", "email"}, reqs, []string{"openid", "profile"})
	if !reflect.DeepEqual(dec.Allowed, []string{"openid", "profile"}) {
		t.Fatalf("allowed = %v", dec.Allowed)
	}
	if !reflect.DeepEqual(dec.Rejected, []string{"email"}) {
		t.Fatalf("rejected = %v", dec.Rejected)
	}
	if !dec.PartialGrant {
		t.Fatal("rejected non-empty but PartialGrant false")
	}

	// Todo otorgado => no partial.
	dec = Classify([]string{"openid", "email"}, reqs, []string{"openid", "email"})
	if dec.PartialGrant {
		t.Fatal("nothing rejected but PartialGrant true")
	}
	if len(dec.Rejected) != 0 {
		t.Fatalf("rejected = %v, want empty", dec.Rejected)
	}
}

func TestClassify_ClientRequiredORsWithGlobal(t *testing.T) {
	client := &ClientPolicy{RequiredScopes: []string{"email"}}
	reqs := BuildRequirements(testCatalog(), client)

	if !reqs.IsRequired("openid") {
		t.Fatal("globally required scope not required")
	}
	if !reqs.IsRequired("email") {
		t.Fatal("client-required scope not required")
	}
	if reqs.IsRequired("profile") {
		t.Fatal("optional scope reported required")
	}

	// Un client no puede volver opcional un requerido global: solo suma.
	dec := Classify([]string{"openid", "email", "profile"}, reqs, []string{"openid", "email"})
	if !reflect.DeepEqual(dec.Allowed, []string{"openid", "email"}) {
		t.Fatalf("allowed = %v", dec.Allowed)
	}
}

func TestClassify_RequiredNeverExcluded(t *testing.T) {
	reqs := BuildRequirements(testCatalog(), &ClientPolicy{RequiredScopes: []string{"profile"}})

	// Grant vacío: los requeridos igual entran al set final.
	dec := Classify([]string{"openid", "profile", "address"}, reqs, nil)
	if !reflect.DeepEqual(dec.Allowed, []string{"openid", "profile"}) {
		t.Fatalf("allowed = %v, required scopes must survive an empty grant", dec.Allowed)
	}
	if !reflect.DeepEqual(dec.Rejected, []string{"address"}) {
		t.Fatalf("rejected = %v", dec.Rejected)
	}
}

func TestVerifyGrantIntegrity_Tampered(t *testing.T) {
	// profile requerido, submission solo otorga openid => tampering.
	err := VerifyGrantIntegrity([]string{"openid", "profile"}, []string{"openid"})
	if err == nil {
		t.Fatal("expected tamper error")
	}
	var tErr *TamperError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TamperError, got %T", err)
	}
	if !reflect.DeepEqual(tErr.Missing, []string{"profile"}) {
		t.Fatalf("missing = %v", tErr.Missing)
	}
}

func TestVerifyGrantIntegrity_Valid(t *testing.T) {
	if err := VerifyGrantIntegrity([]string{"openid"}, []string{"OpenID", "profile"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Sin requeridos, cualquier grant pasa (incluido vacío).
	if err := VerifyGrantIntegrity(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeScopes(t *testing.T) {
	got := NormalizeScopes([]string{" OpenID", "", "profile", "PROFILE", "  ", "email"})
	want := []string{"openid", "profile", "email"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
