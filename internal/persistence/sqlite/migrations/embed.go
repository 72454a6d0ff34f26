// Package migrations holds the embedded SQLite schema for the dashboard store.
package migrations

import "embed"

// FS contains the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
