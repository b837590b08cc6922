// Package postgres embebe las migraciones SQL del driver postgres.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
