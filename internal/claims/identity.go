// Package claims construye la identidad de un token a partir de los scopes
// otorgados, los mappings declarativos del catálogo y los roles del usuario.
//
// Todo el paquete es total: paths desconocidos, usuarios incompletos o
// scopes sin mapping degradan a "claim omitido", nunca a error. Un fallo de
// enriquecimiento jamás debe bloquear la emisión del token.
package claims

import "strings"

// Tipos de claim emitidos por este servicio.
const (
	ClaimTypePermission = "permission"
)

// Claim es un par type/value destinado a un token.
type Claim struct {
	Type  string
	Value string
}

// Identity acumula los claims de un token en construcción.
// No es concurrente: se construye y se lee dentro de un único request.
type Identity struct {
	claims []Claim
	byType map[string]int      // primer índice por tipo
	seen   map[string]struct{} // dedupe por tipo+valor
}

func NewIdentity() *Identity {
	return &Identity{
		byType: make(map[string]int),
		seen:   make(map[string]struct{}),
	}
}

// Has indica si ya existe un claim de este tipo.
func (i *Identity) Has(claimType string) bool {
	_, ok := i.byType[claimType]
	return ok
}

// HasValue indica si ya existe un claim con este tipo y valor exactos.
func (i *Identity) HasValue(claimType, value string) bool {
	_, ok := i.seen[claimType+"\x00"+value]
	return ok
}

// SetIfAbsent agrega el claim solo si el tipo no existe aún (first writer
// wins). Retorna true si lo agregó. Es la semántica de los scope claims:
// un tipo nunca se duplica en una identidad.
func (i *Identity) SetIfAbsent(claimType, value string) bool {
	if i.Has(claimType) {
		return false
	}
	return i.add(claimType, value)
}

// Add agrega el claim deduplicando por tipo+valor. Re-agregar un valor
// existente es un no-op (retorna false). Es la semántica de los permission
// claims: múltiples valores bajo el mismo tipo, sin repetidos.
func (i *Identity) Add(claimType, value string) bool {
	if i.HasValue(claimType, value) {
		return false
	}
	return i.add(claimType, value)
}

func (i *Identity) add(claimType, value string) bool {
	if strings.TrimSpace(claimType) == "" {
		return false
	}
	if _, ok := i.byType[claimType]; !ok {
		i.byType[claimType] = len(i.claims)
	}
	i.seen[claimType+"\x00"+value] = struct{}{}
	i.claims = append(i.claims, Claim{Type: claimType, Value: value})
	return true
}

// Claims retorna una copia de los claims en orden de inserción.
func (i *Identity) Claims() []Claim {
	out := make([]Claim, len(i.claims))
	copy(out, i.claims)
	return out
}

// Values retorna los valores registrados bajo un tipo, en orden.
func (i *Identity) Values(claimType string) []string {
	var out []string
	for _, c := range i.claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}

// ToMap proyecta la identidad a un map listo para claims JWT:
// un valor único queda como string, valores múltiples como []string.
func (i *Identity) ToMap() map[string]any {
	grouped := make(map[string][]string)
	order := make([]string, 0, len(i.byType))
	for _, c := range i.claims {
		if _, ok := grouped[c.Type]; !ok {
			order = append(order, c.Type)
		}
		grouped[c.Type] = append(grouped[c.Type], c.Value)
	}
	out := make(map[string]any, len(order))
	for _, t := range order {
		vals := grouped[t]
		if len(vals) == 1 {
			out[t] = vals[0]
		} else {
			out[t] = vals
		}
	}
	return out
}
