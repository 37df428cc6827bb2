package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finanzas/internal/cli"
)

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the current balance (income minus expenses)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			balance, err := res.Ledger.GetBalance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatBalance(balance))
			return nil
		},
	}
}

func formatBalance(b decimal.Decimal) string {
	style := cli.IncomeStyle
	if b.IsNegative() {
		style = cli.ExpenseStyle
	}
	return cli.TitleStyle.Render("Balance: ") + style.Render(b.StringFixed(2))
}
