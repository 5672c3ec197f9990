package migrations

import "embed"

// FS contains embedded SQLite migrations for allocation storage.
//
//go:embed *.sql
var FS embed.FS
