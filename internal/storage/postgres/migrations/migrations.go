// Package migrations содержит SQL-миграции схемы учётных записей.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
