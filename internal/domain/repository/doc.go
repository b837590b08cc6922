// Package repository define los contratos de acceso a datos del servicio.
//
// Las interfaces de este paquete son implementadas por los drivers en
// internal/store (memory, pg). Los services dependen de estas interfaces,
// nunca de un driver concreto.
//
// El catálogo de políticas (scopes, clients, claim mappings) es read-only
// durante el procesamiento de requests: los writes llegan por flujos
// administrativos separados y un request puede ver datos ligeramente stale.
package repository
