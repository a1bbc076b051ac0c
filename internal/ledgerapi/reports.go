package ledgerapi

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// Period selects the month and year of a report. Zero fields are omitted
// and the API applies its default.
type Period struct {
	Month int
	Year  int
}

func (p Period) values() url.Values {
	v := url.Values{}
	if p.Month != 0 {
		v.Set("month", strconv.Itoa(p.Month))
	}
	if p.Year != 0 {
		v.Set("year", strconv.Itoa(p.Year))
	}
	return v
}

// Summary fetches every statement of a period in one call.
func (c *Client) Summary(ctx context.Context, p Period) (model.Summary, error) {
	var s model.Summary
	err := c.do(ctx, http.MethodGet, "/reports/summary", p.values(), nil, &s)
	return s, err
}

// IncomeStatement fetches the profit and loss statement.
func (c *Client) IncomeStatement(ctx context.Context, p Period) (model.IncomeStatement, error) {
	var s model.IncomeStatement
	err := c.do(ctx, http.MethodGet, "/reports/income-statement", p.values(), nil, &s)
	return s, err
}

// BalanceSheet fetches the balance sheet.
func (c *Client) BalanceSheet(ctx context.Context, p Period) (model.BalanceSheet, error) {
	var s model.BalanceSheet
	err := c.do(ctx, http.MethodGet, "/reports/balance-sheet", p.values(), nil, &s)
	return s, err
}

// CashFlow fetches the cash flow statement.
func (c *Client) CashFlow(ctx context.Context, p Period) (model.CashFlow, error) {
	var s model.CashFlow
	err := c.do(ctx, http.MethodGet, "/reports/cash-flow", p.values(), nil, &s)
	return s, err
}

// RetainedEarnings fetches the statement of retained earnings.
func (c *Client) RetainedEarnings(ctx context.Context, p Period) (model.RetainedEarnings, error) {
	var s model.RetainedEarnings
	err := c.do(ctx, http.MethodGet, "/reports/retained-earnings", p.values(), nil, &s)
	return s, err
}

// Statements are the four statements of one period.
type Statements struct {
	Income   model.IncomeStatement
	Balance  model.BalanceSheet
	CashFlow model.CashFlow
	Retained model.RetainedEarnings
}

// FetchStatements loads the four statements concurrently. The first
// failure cancels the rest and is returned.
func (c *Client) FetchStatements(ctx context.Context, p Period) (Statements, error) {
	var st Statements
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.Income, err = c.IncomeStatement(ctx, p)
		return err
	})
	g.Go(func() (err error) {
		st.Balance, err = c.BalanceSheet(ctx, p)
		return err
	})
	g.Go(func() (err error) {
		st.CashFlow, err = c.CashFlow(ctx, p)
		return err
	})
	g.Go(func() (err error) {
		st.Retained, err = c.RetainedEarnings(ctx, p)
		return err
	})

	if err := g.Wait(); err != nil {
		return Statements{}, err
	}
	return st, nil
}

// Download is a binary report stream. The caller must close it.
type Download struct {
	io.ReadCloser
	ContentType string
	Filename    string // from Content-Disposition, if any
}

// DownloadExcel streams the UMKM's spreadsheet report for a month.
func (c *Client) DownloadExcel(ctx context.Context, month int) (*Download, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	return c.download(ctx, "/reports/download-excel", q)
}

func (c *Client) download(ctx context.Context, path string, q url.Values) (*Download, error) {
	resp, _, err := c.send(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	d := &Download{ReadCloser: resp.Body, ContentType: resp.Header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}
