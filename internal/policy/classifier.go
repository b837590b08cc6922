package policy

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// Requirements es el set de scopes obligatorios para un request:
// OR del flag Required global del scope y del set requerido por-client.
// La semántica es unidireccional: un client puede agregar requeridos, pero
// no existe mecanismo para volver opcional un requerido global.
type Requirements struct {
	set scopeSet
}

// BuildRequirements computa los requeridos a partir del catálogo de scopes
// y la política del client. Scopes ausentes del catálogo se tratan como
// no-requeridos (no es error: el evaluador ya decidió si están permitidos).
func BuildRequirements(catalog []repository.Scope, client *ClientPolicy) Requirements {
	set := make(scopeSet)
	for _, sc := range catalog {
		if sc.Required {
			set[strings.ToLower(strings.TrimSpace(sc.Name))] = struct{}{}
		}
	}
	if client != nil {
		for _, s := range client.RequiredScopes {
			n := strings.ToLower(strings.TrimSpace(s))
			if n != "" {
				set[n] = struct{}{}
			}
		}
	}
	return Requirements{set: set}
}

// IsRequired indica si un scope es obligatorio.
func (r Requirements) IsRequired(scope string) bool {
	return r.set.has(scope)
}

// ConsentDecision es el resultado de clasificar una submission de consent.
// Efímero y request-scoped: nunca se persiste directamente (el consent final
// se persiste como registro de autorización con los scopes efectivos).
type ConsentDecision struct {
	Allowed      []string
	Required     []string
	Rejected     []string
	PartialGrant bool
}

// Classify computa el set efectivo de scopes tras la decisión del usuario.
//
//   - Required = requested cuya obligatoriedad (global OR client) es true.
//   - Allowed  = (granted ∩ requested) ∪ Required. Los requeridos se fuerzan
//     aunque la submission los haya omitido: la UI los renderiza como
//     no-opcionales, y esto protege contra un bug de UI que no envíe el
//     checkbox de un scope requerido.
//   - Rejected = requested − Allowed.
//   - PartialGrant ⇔ Rejected no vacío (bicondicional exacto).
//
// El tamper check (VerifyGrantIntegrity) corre ANTES, en el caller: si un
// requerido falta en granted el request se rechaza y Classify no corre.
func Classify(requested []string, reqs Requirements, granted []string) ConsentDecision {
	req := NormalizeScopes(requested)
	grantedSet := newScopeSet(granted)

	dec := ConsentDecision{
		Allowed:  make([]string, 0, len(req)),
		Required: []string{},
		Rejected: []string{},
	}

	for _, s := range req {
		required := reqs.IsRequired(s)
		if required {
			dec.Required = append(dec.Required, s)
		}
		if required || grantedSet.has(s) {
			dec.Allowed = append(dec.Allowed, s)
		} else {
			dec.Rejected = append(dec.Rejected, s)
		}
	}

	dec.PartialGrant = len(dec.Rejected) > 0
	return dec
}

// TamperError indica que la submission de consent omitió scopes que el
// servidor computó como requeridos. Distingue "el usuario no otorgó un
// scope opcional" (válido) de "un requerido fue silenciosamente removido
// del form enviado" (sospechoso, posible request forjado).
type TamperError struct {
	Missing []string // requeridos ausentes del grant
}

func (e *TamperError) Error() string {
	return fmt.Sprintf("consent submission missing required scopes: %s", strings.Join(e.Missing, " "))
}

// VerifyGrantIntegrity valida required ⊆ granted (case-insensitive).
// Retorna *TamperError con los faltantes si la submission fue manipulada.
func VerifyGrantIntegrity(required, granted []string) error {
	grantedSet := newScopeSet(granted)
	var missing []string
	for _, s := range NormalizeScopes(required) {
		if !grantedSet.has(s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return &TamperError{Missing: missing}
	}
	return nil
}
