package postgres

import "embed"

// Migrations holds the goose SQL migrations, embedded so the binary can
// migrate a database without the source tree.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads from.
const MigrationsDir = "migrations"
