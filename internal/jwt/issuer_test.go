package jwt

import (
	"testing"
)

func TestIssueAccess_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("https://idp.local")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	signed, exp, err := iss.IssueAccess("u-1", "web-app", map[string]any{
		"scope": "openid profile",
		"scp":   []string{"openid", "profile"},
	})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if exp.IsZero() {
		t.Fatal("zero expiry")
	}

	claims, err := iss.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims["sub"] != "u-1" || claims["aud"] != "web-app" {
		t.Fatalf("claims = %v", claims)
	}
	if claims["scope"] != "openid profile" {
		t.Fatalf("scope claim = %v", claims["scope"])
	}
}

func TestParse_RejectsForeignToken(t *testing.T) {
	a, _ := NewIssuer("https://idp.local")
	b, _ := NewIssuer("https://idp.local")

	signed, _, err := a.IssueAccess("u-1", "web-app", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := b.Parse(signed); err == nil {
		t.Fatal("token signed by another key was accepted")
	}
}

func TestNewIssuerFromSeed_Stable(t *testing.T) {
	seed := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" // 32 bytes base64url
	a, err := NewIssuerFromSeed("https://idp.local", seed)
	if err != nil {
		t.Fatalf("NewIssuerFromSeed: %v", err)
	}
	b, _ := NewIssuerFromSeed("https://idp.local", seed)
	if a.ActiveKID() != b.ActiveKID() {
		t.Fatal("same seed produced different KIDs")
	}

	if _, err := NewIssuerFromSeed("https://idp.local", "short"); err == nil {
		t.Fatal("invalid seed accepted")
	}
}
