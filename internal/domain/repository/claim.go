package repository

import "context"

// Tipos de dato de claims soportados por mappings declarativos.
const (
	ClaimDataTypeString  = "string"
	ClaimDataTypeBoolean = "boolean"
	ClaimDataTypeNumber  = "number"
)

// ClaimMapping asocia un scope con una definición de claim.
// Relación many-to-many entre scopes y claims: un scope puede aportar varios
// claims y un claim puede estar cubierto por más de un scope.
type ClaimMapping struct {
	ID        string
	ScopeName string
	ClaimType string // tipo del claim emitido, ej: "email_verified"
	// Attribute es el path declarativo al atributo del usuario,
	// ej: "email_confirmed" o "address.country". Se resuelve contra la
	// tabla cerrada de atributos en internal/claims.
	Attribute     string
	DataType      string // string | boolean | number
	AlwaysInclude bool   // emitir el claim aunque el valor resuelto sea vacío
}

// ClaimMappingInput contiene los datos para crear un mapping.
type ClaimMappingInput struct {
	ScopeName     string
	ClaimType     string
	Attribute     string
	DataType      string
	AlwaysInclude bool
}

// ClaimMappingRepository define operaciones sobre claim mappings.
type ClaimMappingRepository interface {
	// ListByScopes retorna los mappings cuyos scopes estén en names.
	// Scopes sin mappings simplemente no aportan entradas (no es error).
	ListByScopes(ctx context.Context, names []string) ([]ClaimMapping, error)

	// List retorna todos los mappings.
	List(ctx context.Context) ([]ClaimMapping, error)

	// Upsert crea o actualiza un mapping (scope_name + claim_type es único).
	Upsert(ctx context.Context, input ClaimMappingInput) (*ClaimMapping, error)
}
