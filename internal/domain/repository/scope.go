package repository

import (
	"context"
	"time"
)

// Scope representa la definición global de un scope OAuth.
// Inmutable una vez referenciado por tokens emitidos; solo se actualiza
// a través de la gestión administrativa de scopes.
type Scope struct {
	ID           string
	Name         string
	DisplayName  string // Nombre amigable para consent screen
	Description  string
	Required     bool   // Scope obligatorio a nivel global
	DisplayOrder int    // Orden de presentación en la consent screen
	Category     string // Agrupación UI ("identity", "contact", ...)
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// ScopeInput contiene los datos para crear/actualizar un scope.
type ScopeInput struct {
	Name         string
	DisplayName  string
	Description  string
	Required     bool
	DisplayOrder int
	Category     string
}

// ScopeRepository define operaciones sobre OAuth scopes.
type ScopeRepository interface {
	// GetByName busca un scope por nombre (case-insensitive).
	// Retorna ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*Scope, error)

	// List lista todos los scopes ordenados por DisplayOrder, luego nombre.
	List(ctx context.Context) ([]Scope, error)

	// Upsert crea un scope si no existe, o actualiza si ya existe.
	// El nombre no se puede cambiar para preservar consents existentes.
	Upsert(ctx context.Context, input ScopeInput) (*Scope, error)
}
