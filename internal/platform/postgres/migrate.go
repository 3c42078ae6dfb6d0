package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUnknownMigrationCommand is returned for commands Migrate does not support.
var ErrUnknownMigrationCommand = errors.New("unknown migration command")

// MigrationCommands lists the commands accepted by Migrate.
var MigrationCommands = []string{"up", "down", "status", "version"}

// Migrate runs a goose command against db using the migrations embedded in
// the binary.
func Migrate(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "migrations"), slog.String("command", command))

	var run func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error
	switch command {
	case "up":
		run = goose.UpContext
	case "down":
		run = goose.DownContext
	case "status":
		run = goose.StatusContext
	case "version":
		run = goose.VersionContext
	default:
		return fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownMigrationCommand, command, MigrationCommands)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: log})
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info("running migrations")
	if err := run(ctx, db, migrationsDir); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// gooseLogger adapts goose's logger interface to slog. Fatalf does not exit;
// the error is returned to the caller instead.
type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}
