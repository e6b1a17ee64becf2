package main

import (
	"errors"
	"fmt"
	"strings"

	"billing-webhook-service/config"
	"billing-webhook-service/migrations"
	"billing-webhook-service/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New("billing-webhook-migrate", cfg.Log.Level, cfg.Log.Pretty)

			src, err := iofs.New(migrations.FS, ".")
			if err != nil {
				return fmt.Errorf("opening embedded migrations: %w", err)
			}
			m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg.Database.DSN()))
			if err != nil {
				return fmt.Errorf("creating migrate instance: %w", err)
			}
			defer m.Close()

			switch args[0] {
			case "up":
				err = m.Up()
			case "down":
				err = m.Steps(-1)
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migrate %s: %w", args[0], err)
			}

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info().Str("action", args[0]).Msg("no migrations applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading schema version: %w", err)
			}
			log.Info().Str("action", args[0]).Uint("version", version).Bool("dirty", dirty).Msg("schema version")
			return nil
		},
	}
	return cmd
}

// migrateURL switches a postgres:// DSN to the pgx/v5 migrate driver scheme.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}
