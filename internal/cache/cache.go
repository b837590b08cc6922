// Package cache provee la abstracción de caching del servicio.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// Se usa para dos cosas: el catálogo de políticas (TTL + invalidación por
// prefijo cuando la administración cambia scopes/clients) y el estado
// efímero one-shot del flujo OAuth (consent challenges, auth codes).
package cache

import "time"

// Cache define las operaciones de cache.
// La invalidación por prefijo reemplaza los caches globales con tokens de
// cancelación compartidos: es una llamada explícita sobre la dependencia
// inyectada, no un static de proceso.
type Cache interface {
	// Get obtiene un valor. Retorna (nil, false) si no existe o expiró.
	Get(key string) ([]byte, bool)

	// Set guarda un valor con TTL. Si ttl es 0, usa el default del backend.
	Set(key string, value []byte, ttl time.Duration)

	// Delete elimina una key.
	Delete(key string)

	// DeletePrefix elimina en bloque todas las keys con el prefijo dado.
	DeletePrefix(prefix string)
}

// Config configuración para crear un cache.
type Config struct {
	Kind       string // "memory" | "redis"
	DefaultTTL time.Duration
	Redis      struct {
		Addr string
		DB   int
	}
}
