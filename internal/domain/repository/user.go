package repository

import (
	"context"
	"strings"
)

// Address agrupa los atributos postales del usuario.
type Address struct {
	StreetAddress string
	Locality      string
	Region        string
	PostalCode    string
	Country       string
}

// User es la bolsa de atributos del usuario que alimenta el enriquecimiento
// de claims. Los atributos se resuelven por nombre a través de la tabla
// cerrada en internal/claims; un atributo desconocido resuelve a "sin valor".
type User struct {
	ID             string
	Email          string
	EmailConfirmed bool
	PhoneNumber    string
	PhoneConfirmed bool
	Name           string
	GivenName      string
	FamilyName     string
	Picture        string
	Locale         string
	Address        *Address
	Roles          []string // nombres de roles asignados
}

// UserRepository define el acceso a usuarios.
type UserRepository interface {
	// GetByID obtiene un usuario. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
