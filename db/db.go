package db

import "embed"

// Migrations holds the sqlite schema, applied by internal/db.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresMigrations holds the Postgres schema, applied by internal/repository/postgres.Migrate.
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS
