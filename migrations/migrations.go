// Package migrations embeds the SQL schema files applied at startup when
// AUTO_MIGRATE is enabled.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
