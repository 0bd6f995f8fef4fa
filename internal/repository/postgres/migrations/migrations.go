// Package migrations embeds the SQL migration files for the filter-config
// store.
package migrations

import "embed"

//go:embed *.up.sql
var Files embed.FS
