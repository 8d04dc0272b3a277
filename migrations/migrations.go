// Package migrations embeds the SQL schema for every supported driver.
package migrations

import "embed"

// FS holds postgresql/*.sql and mysql/*.sql in golang-migrate naming.
//
//go:embed postgresql/*.sql mysql/*.sql
var FS embed.FS
