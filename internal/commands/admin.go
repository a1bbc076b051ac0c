package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/paging"
	"github.com/pembukuan-dev/pembukuan/internal/report"
)

func newAdminCommand(opts *globalOptions) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration across all UMKMs (admin profile)",
	}
	adminCmd.AddCommand(
		newAdminUMKMCommand(opts),
		newAdminSummaryCommand(opts),
		newAdminDownloadCommand(opts),
	)
	return adminCmd
}

func newAdminUMKMCommand(opts *globalOptions) *cobra.Command {
	umkmCmd := &cobra.Command{
		Use:   "umkm",
		Short: "Manage registered UMKMs",
	}
	umkmCmd.AddCommand(
		newAdminUMKMListCommand(opts),
		newAdminUMKMShowCommand(opts),
		newAdminUMKMAddCommand(opts),
		newAdminUMKMEditCommand(opts),
		newUMKMActionCommand(opts, "delete", "Delete a UMKM", activitylog.ActionDeleteUMKM, (*ledgerapi.Client).DeleteUMKM),
		newUMKMActionCommand(opts, "approve", "Approve a pending registration", activitylog.ActionApproveUMKM, (*ledgerapi.Client).ApproveUMKM),
		newUMKMActionCommand(opts, "reject", "Reject a pending registration", activitylog.ActionRejectUMKM, (*ledgerapi.Client).RejectUMKM),
	)
	return umkmCmd
}

func newAdminUMKMListCommand(opts *globalOptions) *cobra.Command {
	var page, pageSize int
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List UMKMs",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			umkms, err := c.UMKMs(cmd.Context())
			if err != nil {
				return err
			}
			if pending {
				var waiting []model.UMKM
				for _, u := range umkms {
					if !u.Approved {
						waiting = append(waiting, u)
					}
				}
				umkms = waiting
			}
			if pageSize < 1 {
				pageSize = a.cfg.Paging.PageSize
			}
			p := paging.New(umkms, page, pageSize)

			w := newTable(cmd.OutOrStdout())
			row(w, "ID", "NAME", "NIB", "CATEGORY", "APPROVED")
			for _, u := range p.Items {
				row(w, u.ID, u.Name, u.NIB, u.Category, yesNo(bool(u.Approved)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			pageFooter(cmd.OutOrStdout(), p)
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default from config)")
	cmd.Flags().BoolVar(&pending, "pending", false, "only registrations awaiting approval")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newAdminUMKMShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a UMKM's profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			u, err := c.UMKM(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printUMKM(cmd.OutOrStdout(), u)
		}),
	}
}

func printUMKM(out io.Writer, u model.UMKM) error {
	w := newTable(out)
	row(w, "ID:", u.ID)
	row(w, "Name:", u.Name)
	row(w, "NIB:", u.NIB)
	row(w, "PIRT:", u.PIRT)
	row(w, "Address:", u.Address)
	row(w, "Phone:", u.Phone)
	row(w, "Category:", u.Category)
	row(w, "Cash balance:", u.CashBalance)
	row(w, "Approved:", yesNo(bool(u.Approved)))
	return w.Flush()
}

func newAdminUMKMAddCommand(opts *globalOptions) *cobra.Command {
	var reg model.Registration

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a UMKM",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			reg.PasswordConfirmation = reg.Password
			u, err := c.CreateUMKM(cmd.Context(), reg)
			if err != nil {
				return err
			}
			a.record(cmd.Context(), activitylog.ActionCreateUMKM, reg.Name, u.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Created UMKM #%d %s\n", u.ID, reg.Name)
			return nil
		}),
	}

	registrationFlags(cmd, &reg)
	cmd.Flags().StringVar(&reg.Password, "password", "", "initial password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminUMKMEditCommand(opts *globalOptions) *cobra.Command {
	var edit model.Registration

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a UMKM's profile; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := a.adminClient(ctx)
			if err != nil {
				return err
			}
			u, err := c.UMKM(ctx, id)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			for flag, apply := range map[string]func(){
				"name":     func() { u.Name = edit.Name },
				"nib":      func() { u.NIB = edit.NIB },
				"address":  func() { u.Address = edit.Address },
				"pirt":     func() { u.PIRT = edit.PIRT },
				"phone":    func() { u.Phone = edit.Phone },
				"category": func() { u.Category = edit.Category },
			} {
				if f.Changed(flag) {
					apply()
				}
			}

			if _, err := c.UpdateUMKM(ctx, id, u); err != nil {
				return err
			}
			a.record(ctx, activitylog.ActionUpdateUMKM, u.Name, id)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated UMKM #%d\n", id)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&edit.Name, "name", "", "business name")
	f.StringVar(&edit.NIB, "nib", "", "business identification number")
	f.StringVar(&edit.Address, "address", "", "address")
	f.StringVar(&edit.PIRT, "pirt", "", "home industry food permit number")
	f.StringVar(&edit.Phone, "phone", "", "phone number")
	f.StringVar(&edit.Category, "category", "", "business category")
	return cmd
}

type umkmAction func(c *ledgerapi.Client, ctx context.Context, id int) error

func newUMKMActionCommand(opts *globalOptions, use, short, action string, do umkmAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := do(c, cmd.Context(), id); err != nil {
				return err
			}
			a.record(cmd.Context(), action, "", id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: UMKM #%d\n", use, id)
			return nil
		}),
	}
}

func newAdminSummaryCommand(opts *globalOptions) *cobra.Command {
	var p ledgerapi.Period
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Financial summary per UMKM with totals",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			s, err := c.AdminSummary(cmd.Context(), p)
			if err != nil {
				return err
			}
			if pageSize < 1 {
				pageSize = a.cfg.Paging.PageSize
			}
			pg := paging.New(s.PerUMKM, page, pageSize)

			out := cmd.OutOrStdout()
			w := newTable(out)
			row(w, "UMKM", "REVENUE", "EXPENSE", "NET INCOME", "ASSETS", "LIABILITIES", "EQUITY")
			for _, e := range pg.Items {
				row(w, e.Name, e.Revenue, e.Expense, e.NetIncome, e.TotalAssets, e.TotalLiabilities, e.TotalEquity)
			}
			t := s.Total
			row(w, "Total", t.Revenue, t.Expense, t.NetIncome, t.Assets, t.Liabilities, t.Equity)
			if err := w.Flush(); err != nil {
				return err
			}
			pageFooter(out, pg)

			for _, err := range report.CheckTotals(s) {
				warn(cmd.ErrOrStderr(), err)
			}
			return nil
		}),
	}

	periodFlags(cmd, &p)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default from config)")
	return cmd
}

func newAdminDownloadCommand(opts *globalOptions) *cobra.Command {
	var p ledgerapi.Period
	var outPath string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the consolidated spreadsheet report",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			now := time.Now()
			if p.Month == 0 {
				p.Month = int(now.Month())
			}
			if p.Year == 0 {
				p.Year = now.Year()
			}
			c, err := a.adminClient(cmd.Context())
			if err != nil {
				return err
			}
			d, err := c.DownloadAdminReport(cmd.Context(), p)
			if err != nil {
				return err
			}
			fallback := fmt.Sprintf("laporan_semua_umkm_%d_%d.xlsx", p.Year, p.Month)
			return saveDownload(cmd, a, d, outPath, fallback)
		}),
	}

	periodFlags(cmd, &p)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default laporan_semua_umkm_<year>_<month>.xlsx)")
	return cmd
}
