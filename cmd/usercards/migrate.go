package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/usercards/internal/config"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/store/pg"
)

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes de Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if strings.EqualFold(cfg.Storage.Driver, "memory") {
				return errors.New("migrate: storage.driver=memory no tiene esquema")
			}

			ctx := cmd.Context()
			store, err := pg.New(ctx, pg.Config{DSN: cfg.Storage.DSN, MaxConns: 2})
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			logger.L().Info("migrations applied")
			return nil
		},
	}
}
