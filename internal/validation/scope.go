package validation

import "regexp"

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
// - Excludes semicolon and whitespace explicitly.
//
// Examples valid: profile, profile:read, email:verified, a, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// Claim type rules: same shape as scope names but also allows uppercase in the
// middle (standard OIDC claim types like email_verified stay lowercase; custom
// namespaced claims may carry URLs, which we do not validate here).
var claimTypeRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9:_\./-]{0,126}$`)

// ValidClaimType returns true if the provided claim type is acceptable.
func ValidClaimType(name string) bool {
	return claimTypeRe.MatchString(name)
}
