// Package store define el punto de acceso a datos y su factory por driver.
package store

import (
	"context"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// DataAccess agrupa los repositorios del servicio.
// Los services dependen de esta interfaz; el driver concreto (memory, pg)
// se decide en el wiring según configuración.
type DataAccess interface {
	Scopes() repository.ScopeRepository
	Clients() repository.ClientRepository
	ClaimMappings() repository.ClaimMappingRepository
	Consents() repository.ConsentRepository
	Users() repository.UserRepository
	RBAC() repository.RBACRepository
	Audit() repository.AuditRepository

	// Ping verifica la conectividad del backend.
	Ping(ctx context.Context) error

	// Close libera recursos (pools, conexiones).
	Close()
}
