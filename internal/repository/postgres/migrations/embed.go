// Package migrations embeds the wiki schema migrations.
package migrations

import "embed"

// Files holds the *.up.sql / *.down.sql pairs applied by golang-migrate
//
//go:embed *.sql
var Files embed.FS
