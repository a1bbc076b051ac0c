package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Report projections are read-only: they are fetched per filter and
// replace prior state wholesale. The decoders accept the alternate keys
// that different API versions have emitted for the same field.

// StatementLine is one account row of an income statement.
type StatementLine struct {
	AccountID   int             `json:"account_id,omitempty"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`

	// Populated by the per-transaction detail form of the statement.
	Date   string          `json:"date,omitempty"`
	Kind   string          `json:"kind,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *StatementLine) UnmarshalJSON(data []byte) error {
	type plain StatementLine
	var raw struct {
		plain
		Akun    string          `json:"akun"`
		Tanggal string          `json:"tanggal"`
		Jenis   string          `json:"jenis"`
		Nominal decimal.Decimal `json:"nominal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = StatementLine(raw.plain)
	if l.Name == "" {
		l.Name = raw.Akun
	}
	if l.Date == "" {
		l.Date = raw.Tanggal
	}
	if l.Kind == "" {
		l.Kind = raw.Jenis
	}
	if l.Amount.IsZero() {
		l.Amount = raw.Nominal
	}
	return nil
}

// Value is the line's signed contribution: credit minus debit for
// revenue accounts, debit minus credit otherwise. Detail rows that carry
// only a nominal amount report that amount.
func (l StatementLine) Value() decimal.Decimal {
	if l.TotalDebit.IsZero() && l.TotalCredit.IsZero() {
		return l.Amount
	}
	if l.Type == AccountTypeRevenue {
		return l.TotalCredit.Sub(l.TotalDebit)
	}
	return l.TotalDebit.Sub(l.TotalCredit)
}

// IncomeStatement is the profit and loss projection.
type IncomeStatement struct {
	Revenue   decimal.Decimal     `json:"revenue"`
	Expense   decimal.Decimal     `json:"expense"`
	NetIncome decimal.NullDecimal `json:"net_income"`
	Details   []StatementLine     `json:"details,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *IncomeStatement) UnmarshalJSON(data []byte) error {
	type plain IncomeStatement
	var raw struct {
		plain
		NetIncomeCamel decimal.NullDecimal `json:"netIncome"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = IncomeStatement(raw.plain)
	s.NetIncome = firstValid(s.NetIncome, raw.NetIncomeCamel)
	return nil
}

// BalanceLine is one account balance on the balance sheet.
type BalanceLine struct {
	AccountID int             `json:"account_id,omitempty"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *BalanceLine) UnmarshalJSON(data []byte) error {
	type plain BalanceLine
	var raw struct {
		plain
		Nama  string          `json:"nama"`
		Nilai decimal.Decimal `json:"nilai"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = BalanceLine(raw.plain)
	if l.Name == "" {
		l.Name = raw.Nama
	}
	if l.Balance.IsZero() {
		l.Balance = raw.Nilai
	}
	return nil
}

// BalanceSheet is the statement of financial position.
type BalanceSheet struct {
	Assets           []BalanceLine   `json:"assets"`
	Liabilities      []BalanceLine   `json:"liabilities"`
	Equity           []BalanceLine   `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	Balanced         Flag            `json:"balanced"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BalanceSheet) UnmarshalJSON(data []byte) error {
	type plain BalanceSheet
	var raw struct {
		plain
		Liability []BalanceLine `json:"liability"`
		Equities  []BalanceLine `json:"equities"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BalanceSheet(raw.plain)
	if len(b.Liabilities) == 0 {
		b.Liabilities = raw.Liability
	}
	if len(b.Equity) == 0 {
		b.Equity = raw.Equities
	}
	return nil
}

// LiabilitiesAndEquity is the right-hand side of the accounting equation.
func (b BalanceSheet) LiabilitiesAndEquity() decimal.Decimal {
	return b.TotalLiabilities.Add(b.TotalEquity)
}

// CashFlowBreakdown details the operating section of the cash flow.
type CashFlowBreakdown struct {
	NetIncome            decimal.Decimal `json:"net_income"`
	OperatingAdjustments decimal.Decimal `json:"operating_adjustments"`
	Depreciation         decimal.Decimal `json:"depreciation"`
}

// ReportEntry is a dated row in a statement's transaction listing.
type ReportEntry struct {
	Date    string          `json:"tanggal"`
	Account string          `json:"akun"`
	Kind    string          `json:"jenis"`
	Amount  decimal.Decimal `json:"nominal"`
}

// CashFlow is the cash flow statement. CashEnd is null when the API
// leaves the closing balance for the client to derive.
type CashFlow struct {
	Operating       decimal.Decimal     `json:"operating"`
	Investing       decimal.Decimal     `json:"investing"`
	Financing       decimal.Decimal     `json:"financing"`
	CashStart       decimal.Decimal     `json:"cash_start"`
	CashEnd         decimal.NullDecimal `json:"cash_end"`
	NetChangeInCash decimal.Decimal     `json:"net_change_in_cash"`
	Breakdown       *CashFlowBreakdown  `json:"-"`
	Entries         []ReportEntry       `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler. "details" is either the
// operating breakdown object or a list of cash transactions.
func (c *CashFlow) UnmarshalJSON(data []byte) error {
	type plain CashFlow
	var raw struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CashFlow(raw.plain)

	details := bytes.TrimSpace(raw.Details)
	switch {
	case len(details) == 0 || bytes.Equal(details, []byte("null")):
	case details[0] == '{':
		var b CashFlowBreakdown
		if err := json.Unmarshal(details, &b); err != nil {
			return fmt.Errorf("cash flow details: %w", err)
		}
		c.Breakdown = &b
	case details[0] == '[':
		if err := json.Unmarshal(details, &c.Entries); err != nil {
			return fmt.Errorf("cash flow details: %w", err)
		}
	default:
		return fmt.Errorf("cash flow details: unexpected %q", details[:1])
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c CashFlow) MarshalJSON() ([]byte, error) {
	type plain CashFlow
	out := struct {
		plain
		Details any `json:"details,omitempty"`
	}{plain: plain(c)}
	if c.Breakdown != nil {
		out.Details = c.Breakdown
	} else if len(c.Entries) > 0 {
		out.Details = c.Entries
	}
	return json.Marshal(out)
}

// RetainedEarnings is the statement of retained earnings.
type RetainedEarnings struct {
	Beginning decimal.Decimal     `json:"beginning"`
	Income    decimal.Decimal     `json:"income"`
	Dividends decimal.Decimal     `json:"dividends"`
	Ending    decimal.NullDecimal `json:"ending"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RetainedEarnings) UnmarshalJSON(data []byte) error {
	type plain RetainedEarnings
	var raw struct {
		plain
		NetIncome        decimal.NullDecimal `json:"net_income"`
		RetainedEarnings decimal.NullDecimal `json:"retained_earnings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RetainedEarnings(raw.plain)
	if r.Income.IsZero() && raw.NetIncome.Valid {
		r.Income = raw.NetIncome.Decimal
	}
	r.Ending = firstValid(r.Ending, raw.RetainedEarnings)
	return nil
}

// MonthlyEntry is one point of the revenue/expense trend.
type MonthlyEntry struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary bundles every statement for one period, as served by
// GET /reports/summary.
type Summary struct {
	IncomeStatement  IncomeStatement  `json:"income_statement"`
	BalanceSheet     BalanceSheet     `json:"balance_sheet"`
	CashFlow         CashFlow         `json:"cash_flow"`
	RetainedEarnings RetainedEarnings `json:"retained_earnings"`
	Monthly          []MonthlyEntry   `json:"monthly_income_expense,omitempty"`
}

// EntitySummary is one UMKM's row in the admin cross-entity summary.
type EntitySummary struct {
	UMKMID           int             `json:"umkm_id,omitempty"`
	Name             string          `json:"nama_umkm"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expense          decimal.Decimal `json:"expense"`
	NetIncome        decimal.Decimal `json:"net_income"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
}

// SummaryTotals is the all-entity footer of the admin summary.
type SummaryTotals struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Expense     decimal.Decimal `json:"expense"`
	NetIncome   decimal.Decimal `json:"net_income"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
}

// AdminSummary is served by GET /admin/report/summary-all.
type AdminSummary struct {
	PerUMKM []EntitySummary `json:"summary_per_umkm"`
	Total   SummaryTotals   `json:"total_all"`
}

func firstValid(vals ...decimal.NullDecimal) decimal.NullDecimal {
	for _, v := range vals {
		if v.Valid {
			return v
		}
	}
	return decimal.NullDecimal{}
}
