// Package migrations holds the SQLite schema, applied in filename order.
package migrations

import "embed"

// FS embeds the numbered SQL migrations for the SQLite backend.
//
//go:embed *.sql
var FS embed.FS
