// Package migrations embeds the SQLite schema for the slot table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
