// Package policy implementa el core de decisión de scopes: evaluación del
// allow-list por client, clasificación del consentimiento y detección de
// tampering. Todo es computación pura por-request, sin estado compartido.
package policy

import "strings"

// NormalizeScopes canonicaliza una lista de scopes pedidos:
// trim, descarta vacíos, lowercase y dedupe preservando el orden de llegada.
// Toda comparación de scopes en este paquete es case-insensitive.
func NormalizeScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// scopeSet es un set case-insensitive de nombres de scope.
type scopeSet map[string]struct{}

func newScopeSet(scopes []string) scopeSet {
	set := make(scopeSet, len(scopes))
	for _, s := range scopes {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

func (s scopeSet) has(scope string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(scope))]
	return ok
}
