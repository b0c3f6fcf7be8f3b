// Package migrations embeds the SQL schema of a vault database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
