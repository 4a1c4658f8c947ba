// Package migrations embeds SQL migration files for the option store, one
// directory per dialect.
package migrations

import "embed"

// FS contains the embedded SQL migration files.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
