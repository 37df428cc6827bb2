package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
	"finanzas/internal/seed"
)

func (a *app) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the default categories and, optionally, sample transactions",
		Long: `Create the categories listed in SEED_DIR/seed_categories.txt (or the
built-in defaults when that file is missing). Existing categories are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			samples, _ := cmd.Flags().GetBool("samples")

			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			cats := seed.ReadCategoryFile(a.cfg.SeedDir)
			if len(cats) == 0 {
				cats = seed.DefaultCategories()
			}
			var txs []core.TransactionInput
			if samples {
				txs = seed.SampleTransactions()
			}

			result, err := seed.Apply(cmd.Context(), res.Ledger, cats, txs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf(
				"Seeded %d categories (%d already present), %d transactions",
				result.Categories, result.Skipped, result.Transactions)))
			return nil
		},
	}
	cmd.Flags().Bool("samples", false, "also create the sample transactions")
	return cmd
}
