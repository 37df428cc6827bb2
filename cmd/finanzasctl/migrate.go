package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  `Apply the embedded schema migrations to the sqlite or postgres store.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				dialect storage.Dialect
				dsn     string
			)
			switch a.cfg.DataBackend {
			case config.BackendSQLite:
				if err := os.MkdirAll(filepath.Dir(a.cfg.SQLiteDBPath), 0o755); err != nil {
					return fmt.Errorf("create db directory: %w", err)
				}
				dialect, dsn = storage.SQLite, a.cfg.SQLiteDBPath
			case config.BackendPostgres:
				dialect, dsn = storage.Postgres, a.cfg.DatabaseURL
			default:
				return fmt.Errorf("nothing to migrate for the %s backend", a.cfg.DataBackend)
			}

			a.logger.Info("Running migrations", log.FieldOperation, log.OpMigrate, "dialect", dialect)
			if err := storage.RunMigrations(dialect, dsn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Schema is up to date ("+string(dialect)+")"))
			return nil
		},
	}
}
