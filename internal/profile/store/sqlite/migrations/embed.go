// Package migrations embeds the SQLite schema for the profile store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
