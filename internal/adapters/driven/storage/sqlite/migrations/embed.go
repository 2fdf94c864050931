// Package migrations embeds the SQL scripts that build the demo sky database.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
