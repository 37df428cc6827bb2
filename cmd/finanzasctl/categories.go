package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/core"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
	}
	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())
	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list <income|expense>",
		Short:     "List categories of one type, sorted by name",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.Income), string(core.Expense)},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			cats, err := res.Ledger.ListCategories(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeCategories(cmd.OutOrStdout(), cats)
			return nil
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <income|expense> <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			c, err := res.Ledger.AddCategory(cmd.Context(), args[1], args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Created "+c.Name+" ("+c.ID+")"))
			return nil
		},
	}
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; transactions keep its name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			if err := res.Ledger.RemoveCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}

func writeCategories(out io.Writer, cats []core.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("No categories found."))
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tID")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Type, c.ID)
	}
	_ = w.Flush()
}
