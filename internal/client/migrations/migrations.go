// Package migrations embeds the SQLite schema for the wallet's local vault book.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
