package comments

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

const (
	MigrationsDir   = "migrations"
	MigrationsTable = "schema_migrations_comments"
)
