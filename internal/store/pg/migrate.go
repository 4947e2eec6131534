package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dropDatabas3/usercards/internal/observability/logger"
	migrations "github.com/dropDatabas3/usercards/migrations/postgres"
)

// gooseUp es un seam para tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate aplica las migraciones embebidas sobre el pool del store.
func (s *Store) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return RunMigrations(ctx, db)
}

// RunMigrations configura goose con el FS embebido y aplica las pendientes.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, migrations.Dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.L().Info("migrations applied", logger.Component("migrate"))
	return nil
}

// gooseLogger adapta goose.Logger a zap.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.L().Sugar().Infof(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.L().Sugar().Fatalf(format, v...)
}
