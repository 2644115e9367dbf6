// Package migrations embeds the PostgreSQL schema for the slot table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
