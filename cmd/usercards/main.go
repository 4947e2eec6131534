package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/usercards/internal/config"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// Seteados por -ldflags en el build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		configPath = envOr("CONFIG_PATH", "")
		envFile    = envOr("ENV_FILE", ".env")
	)

	root := &cobra.Command{
		Use:           "usercards",
		Short:         "Servicio de usuarios y tarjetas protegido por JWT",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta al YAML de configuración (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "archivo .env a cargar antes de leer la configuración")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			ServiceName: "usercards",
			Version:     version,
		})
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra versión y commit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "usercards %s (%s)\n", version, commit)
		},
	}
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
