package database

import (
	"embed"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type MigrationDirection string

const (
	MigrateUp   MigrationDirection = "up"
	MigrateDown MigrationDirection = "down"
)

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

func (s *DB) migrationDialect() string {
	if s.SQL.Dialector.Name() == cfgDriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Migrate applies every pending migration going up, or rolls back the latest one going down.
func (s *DB) Migrate(direction MigrationDirection) (int, error) {
	log := s.log.Function("Migrate")

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return 0, log.Err("failed to get database from GORM", err)
	}

	var applied int
	switch direction {
	case MigrateUp:
		applied, err = migrate.Exec(sqlDB, s.migrationDialect(), migrationSource(), migrate.Up)
	case MigrateDown:
		applied, err = migrate.ExecMax(sqlDB, s.migrationDialect(), migrationSource(), migrate.Down, 1)
	default:
		return 0, log.Error("unknown migration direction", "direction", direction)
	}
	if err != nil {
		return applied, log.Err("failed to run migrations", err, "direction", direction)
	}

	log.Info("Migrations applied", "direction", direction, "count", applied)
	return applied, nil
}
