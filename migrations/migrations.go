// Package migrations embeds the goose SQL migration files so the server
// binary can apply them without a migrations directory on disk.
package migrations

import "embed"

// FS holds every SQL migration in this directory.
//
//go:embed *.sql
var FS embed.FS
