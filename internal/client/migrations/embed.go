// Package migrations embeds the goose migrations that manage the client
// database schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
