package migrations

import "embed"

// FS contains embedded SQLite migrations for adventure storage.
//
//go:embed *.sql
var FS embed.FS
