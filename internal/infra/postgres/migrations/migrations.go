// Package migrations holds the schema for the country catalog.
// File names carry the migration version, as bun/migrate requires.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
