package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
)

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect transactions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all transactions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			txs, err := res.Ledger.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			writeTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	})
	return cmd
}

func writeTransactions(out io.Writer, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("No transactions found."))
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format("2006-01-02"), t.Type, t.Signed().StringFixed(2), t.Category, t.Description, t.ID)
	}
	_ = w.Flush()
	fmt.Fprintln(out, formatBalance(core.Balance(txs)))
}
