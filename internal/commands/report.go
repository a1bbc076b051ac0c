package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
	"github.com/pembukuan-dev/pembukuan/internal/fetch"
	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/log"
	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/report"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements",
	}
	reportCmd.AddCommand(
		newStatementCommand(opts, "summary", "All statements for a period", printSummary),
		newStatementCommand(opts, "income", "Income statement", printIncome),
		newStatementCommand(opts, "balance", "Balance sheet", printBalance),
		newStatementCommand(opts, "cashflow", "Cash flow statement", printCashFlow),
		newStatementCommand(opts, "retained", "Statement of retained earnings", printRetained),
		newStatementCommand(opts, "statements", "Income, balance, cash flow and retained earnings statements", printStatements),
		newReportMonthlyCommand(opts),
		newReportWatchCommand(opts),
		newReportDownloadCommand(opts),
	)
	return reportCmd
}

func periodFlags(cmd *cobra.Command, p *ledgerapi.Period) {
	cmd.Flags().IntVar(&p.Month, "month", 0, "month (1-12, default current)")
	cmd.Flags().IntVar(&p.Year, "year", 0, "year (default current)")
}

// statementPrinter fetches one statement and renders it, writing
// reconciliation warnings to errOut.
type statementPrinter func(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error

func newStatementCommand(opts *globalOptions, use, short string, render statementPrinter) *cobra.Command {
	var p ledgerapi.Period

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			a.log.DebugContext(cmd.Context(), "fetching statement",
				log.FieldOperation, use, log.FieldYear, p.Year, log.FieldMonth, p.Month)
			return render(cmd.Context(), c, p, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}),
	}
	periodFlags(cmd, &p)
	return cmd
}

func printSummary(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	s, err := c.Summary(ctx, p)
	if err != nil {
		return err
	}
	renderSummary(out, s)
	for _, err := range report.Reconcile(s) {
		warn(errOut, err)
	}
	return nil
}

func renderSummary(out io.Writer, s model.Summary) {
	w := newTable(out)
	row(w, "Revenue:", s.IncomeStatement.Revenue)
	row(w, "Expense:", s.IncomeStatement.Expense)
	row(w, "Net income:", report.DeriveNetIncome(s.IncomeStatement))
	row(w, "Total assets:", s.BalanceSheet.TotalAssets)
	row(w, "Liabilities + equity:", s.BalanceSheet.LiabilitiesAndEquity())
	row(w, "Cash position:", report.DeriveCashPosition(s.CashFlow))
	row(w, "Retained earnings:", report.DeriveRetainedEnding(s.RetainedEarnings))
	_ = w.Flush()
}

// printStatements fetches the four statements concurrently and renders
// them in statement order. Nothing is printed unless all four load.
func printStatements(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	st, err := c.FetchStatements(ctx, p)
	if err != nil {
		return err
	}

	sections := []struct {
		title  string
		render func() error
	}{
		{"INCOME STATEMENT", func() error { return renderIncome(out, errOut, st.Income) }},
		{"BALANCE SHEET", func() error { return renderBalance(out, errOut, st.Balance) }},
		{"CASH FLOW", func() error { return renderCashFlow(out, errOut, st.CashFlow) }},
		{"RETAINED EARNINGS", func() error { return renderRetained(out, errOut, st.Retained) }},
	}
	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n\n", sec.title)
		if err := sec.render(); err != nil {
			return err
		}
	}
	return nil
}

func printIncome(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	is, err := c.IncomeStatement(ctx, p)
	if err != nil {
		return err
	}
	return renderIncome(out, errOut, is)
}

func renderIncome(out, errOut io.Writer, is model.IncomeStatement) error {
	w := newTable(out)
	revenue, expense := report.SplitDetails(is.Details)
	statementSection(w, "Revenue", revenue, is.Revenue)
	statementSection(w, "Expense", expense, is.Expense)
	row(w, "Net income", "", report.DeriveNetIncome(is))
	if err := w.Flush(); err != nil {
		return err
	}

	if err := report.CheckNetIncome(is); err != nil {
		warn(errOut, err)
	}
	return nil
}

func statementSection(w io.Writer, title string, lines []model.StatementLine, total any) {
	row(w, title, "", "")
	for _, l := range lines {
		row(w, "", l.Name, l.Value())
	}
	row(w, "", "Total "+title, total)
	row(w, "", "", "")
}

func printBalance(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	bs, err := c.BalanceSheet(ctx, p)
	if err != nil {
		return err
	}
	return renderBalance(out, errOut, bs)
}

func renderBalance(out, errOut io.Writer, bs model.BalanceSheet) error {
	w := newTable(out)
	balanceSection(w, "Assets", bs.Assets, bs.TotalAssets)
	balanceSection(w, "Liabilities", bs.Liabilities, bs.TotalLiabilities)
	balanceSection(w, "Equity", bs.Equity, bs.TotalEquity)
	row(w, "Liabilities + equity", "", bs.LiabilitiesAndEquity())
	if err := w.Flush(); err != nil {
		return err
	}

	if err := report.CheckBalanced(bs); err != nil {
		warn(errOut, err)
	}
	return nil
}

func balanceSection(w io.Writer, title string, lines []model.BalanceLine, total any) {
	row(w, title, "", "")
	for _, l := range lines {
		row(w, "", l.Name, l.Balance)
	}
	row(w, "", "Total "+title, total)
	row(w, "", "", "")
}

func printCashFlow(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	cf, err := c.CashFlow(ctx, p)
	if err != nil {
		return err
	}
	return renderCashFlow(out, errOut, cf)
}

func renderCashFlow(out, errOut io.Writer, cf model.CashFlow) error {
	w := newTable(out)
	if cf.Breakdown != nil {
		row(w, "Net income:", cf.Breakdown.NetIncome)
		row(w, "Adjustments:", cf.Breakdown.OperatingAdjustments)
		row(w, "Depreciation:", cf.Breakdown.Depreciation)
	}
	row(w, "Operating:", cf.Operating)
	row(w, "Investing:", cf.Investing)
	row(w, "Financing:", cf.Financing)
	row(w, "Net change in cash:", cf.NetChangeInCash)
	row(w, "Cash at start:", cf.CashStart)
	row(w, "Cash at end:", report.DeriveCashPosition(cf))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(cf.Entries) > 0 {
		fmt.Fprintln(out)
		w = newTable(out)
		row(w, "DATE", "ACCOUNT", "KIND", "AMOUNT")
		for _, e := range cf.Entries {
			row(w, e.Date, e.Account, e.Kind, e.Amount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if err := report.CheckCashFlow(cf); err != nil {
		warn(errOut, err)
	}
	return nil
}

func printRetained(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, out, errOut io.Writer) error {
	re, err := c.RetainedEarnings(ctx, p)
	if err != nil {
		return err
	}
	return renderRetained(out, errOut, re)
}

func renderRetained(out, errOut io.Writer, re model.RetainedEarnings) error {
	w := newTable(out)
	row(w, "Beginning:", re.Beginning)
	row(w, "Net income:", re.Income)
	row(w, "Dividends:", re.Dividends)
	row(w, "Ending:", report.DeriveRetainedEnding(re))
	if err := w.Flush(); err != nil {
		return err
	}

	if err := report.CheckRetained(re); err != nil {
		warn(errOut, err)
	}
	return nil
}

func newReportMonthlyCommand(opts *globalOptions) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly revenue and expense for a calendar year",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			policy, err := report.ParseDuplicatePolicy(a.cfg.Reports.DuplicateMonths)
			if err != nil {
				return err
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			s, err := c.Summary(cmd.Context(), ledgerapi.Period{Year: year})
			if err != nil {
				return err
			}
			trend, err := report.BuildTrend(s.Monthly, policy)
			if err != nil {
				return err
			}
			return printTrend(cmd.OutOrStdout(), trend)
		}),
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	return cmd
}

func printTrend(out io.Writer, t report.Trend) error {
	w := newTable(out)
	row(w, "MONTH", "REVENUE", "EXPENSE")
	for _, e := range t.Series {
		row(w, e.Month, e.Revenue, e.Expense)
	}
	row(w, "Total", t.Revenue, t.Expense)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nHighest revenue: %s (%s)\n", t.MaxRevenue.Month, formatAmount(t.MaxRevenue.Revenue))
	fmt.Fprintf(out, "Lowest revenue:  %s (%s)\n", t.MinRevenue.Month, formatAmount(t.MinRevenue.Revenue))
	return nil
}

func newReportWatchCommand(opts *globalOptions) *cobra.Command {
	var p ledgerapi.Period
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the summary periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			return watchSummary(cmd.Context(), c, p, interval, cmd.OutOrStdout(), a.log)
		}),
	}

	periodFlags(cmd, &p)
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refresh interval")
	return cmd
}

// watchSummary reloads the summary every interval. Loads may overlap when
// the API is slower than the interval; a load that finishes after a newer
// one started is dropped.
func watchSummary(ctx context.Context, c *ledgerapi.Client, p ledgerapi.Period, interval time.Duration, out io.Writer, logger *log.Logger) error {
	var latest fetch.Latest[model.Summary]
	results := make(chan model.Summary)
	failures := make(chan error)

	load := func() {
		s, err := latest.Load(ctx, func(ctx context.Context) (model.Summary, error) {
			return c.Summary(ctx, p)
		})
		switch {
		case errors.Is(err, fetch.ErrStale):
			logger.DebugContext(ctx, "dropped stale summary")
		case err != nil:
			select {
			case failures <- err:
			case <-ctx.Done():
			}
		default:
			select {
			case results <- s:
			case <-ctx.Done():
			}
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	go load()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			go load()
		case err := <-failures:
			if errors.Is(err, ledgerapi.ErrUnauthorized) {
				return err
			}
			logger.ErrorContext(ctx, "refreshing summary failed", log.FieldError, err)
		case s := <-results:
			fmt.Fprintf(out, "-- %s\n", time.Now().Format(time.TimeOnly))
			renderSummary(out, s)
		}
	}
}

func newReportDownloadCommand(opts *globalOptions) *cobra.Command {
	var month int
	var outPath string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the monthly spreadsheet report",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be 1-12, got %d", month)
			}
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			d, err := c.DownloadExcel(cmd.Context(), month)
			if err != nil {
				return err
			}
			return saveDownload(cmd, a, d, outPath, fmt.Sprintf("laporan_keuangan_%02d.xlsx", month))
		}),
	}

	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "month (1-12)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default from the server's file name)")
	return cmd
}

// saveDownload copies d to outPath, or to the server-suggested name (or
// fallback) in the working directory.
func saveDownload(cmd *cobra.Command, a *app, d *ledgerapi.Download, outPath, fallback string) error {
	defer d.Close()

	if outPath == "" {
		outPath = fallback
		if d.Filename != "" {
			outPath = filepath.Base(d.Filename)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	n, err := io.Copy(f, d)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	a.record(cmd.Context(), activitylog.ActionDownload, outPath, 0)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", outPath, n)
	return nil
}
