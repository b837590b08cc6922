package repository

import "context"

// Role representa un rol con su lista de permisos.
// Permissions se persiste como string separado por comas (formato heredado
// del modelo administrativo); el enricher lo separa, trimea y dedupea.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions string // "users:read,users:write"
}

// RBACRepository define operaciones de lectura sobre roles y permisos.
type RBACRepository interface {
	// GetRolesByNames retorna los roles cuyo nombre esté en names.
	// Nombres desconocidos se ignoran silenciosamente.
	GetRolesByNames(ctx context.Context, names []string) ([]Role, error)
}
