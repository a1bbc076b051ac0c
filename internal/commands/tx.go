package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/accounts"
	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
	"github.com/pembukuan-dev/pembukuan/internal/journal"
	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/paging"
	"github.com/pembukuan-dev/pembukuan/internal/session"
)

func newTxCommand(opts *globalOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Journal transactions",
	}
	txCmd.AddCommand(
		newTxListCommand(opts),
		newTxShowCommand(opts),
		newTxDeleteCommand(opts),
		newTxAddCommand(opts),
	)
	return txCmd
}

func newTxListCommand(opts *globalOptions) *cobra.Command {
	var filter ledgerapi.TransactionFilter
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := c.Transactions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if pageSize < 1 {
				pageSize = a.cfg.Paging.PageSize
			}
			p := paging.New(txs, page, pageSize)

			w := newTable(cmd.OutOrStdout())
			row(w, "ID", "DATE", "DESCRIPTION", "DEBIT", "CREDIT")
			for _, tx := range p.Items {
				debit, credit := tx.Totals()
				row(w, tx.ID, txDate(tx), tx.Description, debit, credit)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			pageFooter(cmd.OutOrStdout(), p)
			return nil
		}),
	}

	f := cmd.Flags()
	f.IntVar(&filter.Month, "month", 0, "month (1-12)")
	f.IntVar(&filter.Year, "year", 0, "year")
	f.IntVar(&filter.UMKMID, "umkm", 0, "UMKM ID (admin profile)")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&pageSize, "page-size", 0, "rows per page (default from config)")
	return cmd
}

func txDate(tx model.Transaction) string {
	if day, ok := tx.Day(); ok {
		return day.Format(model.DateFormat)
	}
	return tx.Date
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func newTxShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a transaction and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			tx, err := c.Transaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printTransaction(cmd.OutOrStdout(), tx)
		}),
	}
}

func printTransaction(out io.Writer, tx model.Transaction) error {
	fmt.Fprintf(out, "Transaction #%d  %s\n", tx.ID, txDate(tx))
	if tx.Description != "" {
		fmt.Fprintf(out, "%s\n", tx.Description)
	}
	if tx.CashFlowCategory != "" {
		fmt.Fprintf(out, "Cash flow: %s", tx.CashFlowCategory)
		if tx.IsDividend {
			fmt.Fprint(out, " (dividend)")
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)

	w := newTable(out)
	row(w, "ACCOUNT", "NAME", "DEBIT", "CREDIT")
	for _, d := range tx.Details {
		name := ""
		if d.Account != nil {
			name = d.Account.Name
		}
		row(w, d.AccountID, name, d.Debit, d.Credit)
	}
	debit, credit := tx.Totals()
	row(w, "", "Total", debit, credit)
	return w.Flush()
}

func newTxDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			a.record(cmd.Context(), activitylog.ActionDeleteTransaction, "", id)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction #%d\n", id)
			return nil
		}),
	}
}

type txAddOptions struct {
	date      string
	desc      string
	category  string
	dividend  bool
	lines     []string
	linesFile string
	chartFile string
	check     bool
}

func newTxAddCommand(opts *globalOptions) *cobra.Command {
	o := &txAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and record a transaction",
		Long: "Lines are given as --line account:debit:credit (repeatable) or as a CSV file\n" +
			"with columns account_id,debit,credit. Amounts use Indonesian notation, 1.500.000,50.\n" +
			"A draft that fails validation is never sent.",
		Example: "  pembukuan tx add --date 2025-01-15 --desc \"Penjualan tunai\" \\\n" +
			"    --line 101:1.500.000: --line 401::1.500.000",
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			return runTxAdd(cmd, a, o)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&o.date, "date", "", "transaction date, YYYY-MM-DD")
	f.StringVar(&o.desc, "desc", "", "description")
	f.StringVar(&o.category, "category", string(model.CashFlowOperating), "cash flow category: operating, investing or financing")
	f.BoolVar(&o.dividend, "dividend", false, "mark as an owner dividend")
	f.StringArrayVar(&o.lines, "line", nil, "line item account:debit:credit")
	f.StringVar(&o.linesFile, "lines", "", "CSV file of line items")
	f.StringVar(&o.chartFile, "chart", "", "validate against a local chart of accounts CSV instead of the API's")
	f.BoolVar(&o.check, "check", false, "validate only; do not submit")
	return cmd
}

func buildDraft(o *txAddOptions) (*model.TransactionDraft, error) {
	d := model.NewDraft()
	d.Date = o.date
	d.Description = o.desc
	d.CashFlowCategory = model.CashFlowCategory(o.category)
	d.IsDividend = o.dividend

	var lines []model.LineItem
	if o.linesFile != "" {
		f, err := os.Open(o.linesFile)
		if err != nil {
			return nil, fmt.Errorf("opening lines file: %w", err)
		}
		defer f.Close()
		if lines, err = journal.ReadLines(f); err != nil {
			return nil, err
		}
	}
	for _, spec := range o.lines {
		l, err := journal.ParseLineSpec(spec)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if len(lines) > 0 {
		d.Lines = lines
	}
	return d, nil
}

func runTxAdd(cmd *cobra.Command, a *app, o *txAddOptions) error {
	ctx := cmd.Context()
	d, err := buildDraft(o)
	if err != nil {
		return err
	}

	var c *ledgerapi.Client
	if !o.check || o.chartFile == "" {
		if c, err = a.client(ctx); err != nil {
			return err
		}
	}

	var chart *accounts.Service
	if o.chartFile != "" {
		if chart, err = accounts.Load(o.chartFile); err != nil {
			return err
		}
	} else {
		accts, err := c.Accounts(ctx)
		if err != nil {
			return err
		}
		chart = accounts.NewService(accts)
	}

	totals := journal.ComputeTotals(d.Lines)
	if o.check {
		verrs := journal.ValidateDraft(d, chart)
		printTotals(cmd.OutOrStdout(), totals)
		if len(verrs) > 0 {
			return blocked(cmd.ErrOrStderr(), &journal.DraftError{Violations: verrs})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK: transaction is valid")
		return nil
	}

	sub := journal.NewSubmitter(chart, c)
	sub.UMKMFields = c.Session().Role == session.RoleUMKM

	tx, err := sub.Submit(ctx, d)
	var draftErr *journal.DraftError
	if errors.As(err, &draftErr) {
		printTotals(cmd.OutOrStdout(), totals)
		return blocked(cmd.ErrOrStderr(), draftErr)
	}
	if err != nil {
		return err
	}

	a.record(ctx, activitylog.ActionCreateTransaction, o.desc, tx.ID)
	if tx.ID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction #%d (%s)\n", tx.ID, formatAmount(totals.Debit))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction (%s)\n", formatAmount(totals.Debit))
	}
	return nil
}

func printTotals(out io.Writer, t journal.Totals) {
	w := newTable(out)
	row(w, "Debit:", t.Debit)
	row(w, "Credit:", t.Credit)
	row(w, "Difference:", t.Difference())
	_ = w.Flush()
}

func blocked(errOut io.Writer, e *journal.DraftError) error {
	for _, v := range e.Violations {
		fmt.Fprintf(errOut, "  %v\n", v)
	}
	return fmt.Errorf("transaction blocked: %d problem(s)", len(e.Violations))
}
