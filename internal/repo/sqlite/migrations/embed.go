package migrations

import "embed"

// FS содержит миграции встроенного SQLite-хранилища.
//
//go:embed *.sql
var FS embed.FS
