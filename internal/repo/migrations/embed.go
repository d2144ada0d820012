package migrations

import "embed"

// FS содержит миграции PostgreSQL.
//
//go:embed *.sql
var FS embed.FS
