package claims

import (
	"strings"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// EnrichPermissions agrega un claim "permission" por cada permiso único
// derivado de los roles del usuario. El string Permissions de cada rol se
// separa por comas, se trimea y se dedupea. Idempotente: re-agregar un
// valor existente es un no-op.
func EnrichPermissions(identity *Identity, roles []repository.Role) {
	if identity == nil {
		return
	}
	for _, role := range roles {
		for _, p := range strings.Split(role.Permissions, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			identity.Add(ClaimTypePermission, p)
		}
	}
}

// EnrichScopeClaims agrega a la identidad los claims cuyos mappings estén
// cubiertos por los scopes otorgados.
//
// Un mapping aplica si su scope ∈ granted, o si AlwaysInclude está seteado
// y el scope está al menos presente en el request (requested). Fuera de
// eso el claim nunca aparece sin scope que lo cubra.
//
// Reglas por mapping aplicable:
//   - El atributo se resuelve vía la tabla cerrada (ResolveAttribute);
//     sin valor + !AlwaysInclude => claim omitido.
//   - DataType boolean normaliza el valor a "true"/"false" literal.
//   - First writer wins: un tipo ya presente en la identidad no se pisa.
//
// Nunca retorna error: cualquier dato faltante degrada a claim omitido.
func EnrichScopeClaims(identity *Identity, user *repository.User, granted, requested []string, mappings []repository.ClaimMapping) {
	if identity == nil {
		return
	}
	grantedSet := toSet(granted)
	requestedSet := toSet(requested)

	for _, m := range mappings {
		scope := strings.ToLower(strings.TrimSpace(m.ScopeName))
		if _, ok := grantedSet[scope]; !ok {
			if _, inReq := requestedSet[scope]; !(m.AlwaysInclude && inReq) {
				continue
			}
		}

		value, found := ResolveAttribute(user, m.Attribute)
		if !found && !m.AlwaysInclude {
			continue
		}
		if strings.EqualFold(m.DataType, repository.ClaimDataTypeBoolean) {
			value = normalizeBool(value)
		}
		identity.SetIfAbsent(m.ClaimType, value)
	}
}

func normalizeBool(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return "true"
	default:
		return "false"
	}
}

func toSet(scopes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		n := strings.ToLower(strings.TrimSpace(s))
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
