package users

import "embed"

// Migrations holds the schema for the users table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	MigrationsDir   = "migrations"
	MigrationsTable = "schema_migrations_users"
)
