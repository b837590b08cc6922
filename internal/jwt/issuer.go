// Package jwt emite y verifica los tokens firmados del servicio (EdDSA).
package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer firma tokens con una clave ed25519 activa.
type Issuer struct {
	Iss       string // "iss"
	AccessTTL time.Duration
	IDTTL     time.Duration

	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewIssuer genera un keypair efímero al boot. El KID deriva de la pubkey.
func NewIssuer(iss string) (*Issuer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newIssuerWithKey(iss, priv, pub), nil
}

// NewIssuerFromSeed construye el issuer desde un seed estable (32 bytes,
// base64url). Permite sobrevivir restarts sin invalidar tokens en vuelo.
func NewIssuerFromSeed(iss, seedB64 string) (*Issuer, error) {
	seed, err := base64.RawURLEncoding.DecodeString(seedB64)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, errors.New("jwt: invalid signing seed")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return newIssuerWithKey(iss, priv, priv.Public().(ed25519.PublicKey)), nil
}

func newIssuerWithKey(iss string, priv ed25519.PrivateKey, pub ed25519.PublicKey) *Issuer {
	sum := sha256.Sum256(pub)
	return &Issuer{
		Iss:       iss,
		AccessTTL: 15 * time.Minute,
		IDTTL:     15 * time.Minute,
		kid:       base64.RawURLEncoding.EncodeToString(sum[:8]),
		priv:      priv,
		pub:       pub,
	}
}

// ActiveKID devuelve el KID activo actual.
func (i *Issuer) ActiveKID() string { return i.kid }

// Keyfunc devuelve un jwt.Keyfunc para verificar tokens propios.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != i.kid {
			return nil, errors.New("unknown kid")
		}
		return i.pub, nil
	}
}

// SignRaw firma un MapClaims arbitrario, setea header kid/typ y devuelve el JWT firmado.
func (i *Issuer) SignRaw(claims jwtv5.MapClaims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.kid
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.priv)
}

// IssueAccess emite un Access Token con claims estándar + extra (flat).
func (i *Issuer) IssueAccess(sub, aud string, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)
	claims := baseClaims(i.Iss, sub, aud, now, exp)
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueIDToken emite un ID Token OIDC con claims estándar y extras.
func (i *Issuer) IssueIDToken(sub, aud string, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.IDTTL)
	claims := baseClaims(i.Iss, sub, aud, now, exp)
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifica firma y expiración de un token propio y retorna sus claims.
func (i *Issuer) Parse(raw string) (jwtv5.MapClaims, error) {
	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(raw, claims, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(i.Iss),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func baseClaims(iss, sub, aud string, now, exp time.Time) jwtv5.MapClaims {
	return jwtv5.MapClaims{
		"iss": iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
}
