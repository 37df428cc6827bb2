package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/log"
)

// app carries what every subcommand needs once the root pre-run has loaded config.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "finanzasctl",
		Short: "Administer the finanzas ledger",
		Long: `finanzasctl migrates, seeds and inspects the finanzas ledger directly
against the configured store (DATA_BACKEND, SQLITE_DB_PATH, DATABASE_URL).

With the memory backend every invocation starts from the seed categories.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			a.logger = cli.SetupLogger(log.ComponentCLI, parseLevel(level))
			cli.LoadEnvFile(a.logger)
			a.cfg = config.Load()
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.seedCmd())
	root.AddCommand(a.balanceCmd())
	root.AddCommand(a.categoriesCmd())
	root.AddCommand(a.transactionsCmd())
	return root
}

func main() {
	ctx, stop := cli.SignalContext()
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	cfg := config.Config{LogLevel: s}
	return cfg.SlogLevel()
}

// openBackend builds the store and ledger service from the loaded config.
func (a *app) openBackend(cmd *cobra.Command) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	// Events from admin tooling are not published.
	bc.AMQPURL = ""
	return backend.NewFactory(a.logger).CreateBackend(cmd.Context(), bc)
}
