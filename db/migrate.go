package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	log *zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(format, v...)
}

// Migrate brings the schema up to the latest embedded migration.
func (d *IdentityDB) Migrate() error {
	dialect := d.Driver
	if dialect == DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: d.Log})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("error setting migration dialect: %w", err)
	}

	if err := goose.Up(d.DB, "migrations"); err != nil {
		d.Log.Error().Err(err).Msg("error running migrations")
		return fmt.Errorf("error running migrations: %w", err)
	}

	d.Log.Info().Msg("Tables initialized successfully")
	return nil
}
