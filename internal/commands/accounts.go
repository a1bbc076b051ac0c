package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/accounts"
	"github.com/pembukuan-dev/pembukuan/internal/model"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	accountsCmd.AddCommand(
		newAccountsListCommand(opts),
		newAccountsExportCommand(opts),
		newAccountsDefaultsCommand(),
	)
	return accountsCmd
}

func newAccountsListCommand(opts *globalOptions) *cobra.Command {
	var (
		accountType string
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts grouped by type",
		Long: `List the chart of accounts grouped by type.

The chart is reused from local state for cache.accounts_ttl after each
fetch; --refresh asks the API again.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			if accountType != "" && !model.AccountType(accountType).Valid() {
				return fmt.Errorf("unknown account type %q", accountType)
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if refresh {
				if err := c.InvalidateAccounts(cmd.Context()); err != nil {
					return err
				}
			}
			accts, err := c.Accounts(cmd.Context())
			if err != nil {
				return err
			}

			svc := accounts.NewService(accts)
			if accountType != "" {
				return printAccounts(cmd.OutOrStdout(), svc.ByType(model.AccountType(accountType)))
			}
			for i, g := range svc.Grouped() {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", g.Type)
				if err := printAccounts(cmd.OutOrStdout(), g.Accounts); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only accounts of this type (asset, liability, equity, revenue, expense)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached chart and fetch it again")
	return cmd
}

func printAccounts(out io.Writer, accts []model.Account) error {
	w := newTable(out)
	row(w, "ID", "NAME", "TYPE", "NORMAL")
	for _, acct := range accts {
		row(w, acct.ID, acct.Name, acct.Type, acct.Normal())
	}
	return w.Flush()
}

func newAccountsExportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the chart of accounts to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			accts, err := c.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			if err := accounts.NewService(accts).Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d accounts to %s\n", len(accts), args[0])
			return nil
		}),
	}
}

func newAccountsDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults <file>",
		Short: "Write the standard UMKM chart of accounts to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart := accounts.DefaultChart()
			if err := accounts.NewService(chart).Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d accounts to %s\n", len(chart), args[0])
			return nil
		},
	}
}
