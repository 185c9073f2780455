// Package migrations contains embedded SQL migrations for the SQLite journal.
package migrations

import "embed"

//go:embed events/*.sql
var EventsFS embed.FS
