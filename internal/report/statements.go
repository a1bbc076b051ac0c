package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// MismatchError records a figure the API reported that disagrees with the
// value derived from the same statement's inputs. The derived value is
// what gets displayed; the error is only a flag.
type MismatchError struct {
	Field    string
	Reported decimal.Decimal
	Derived  decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: reported %s, derived %s", e.Field, e.Reported.String(), e.Derived.String())
}

func mismatch(field string, reported, derived decimal.Decimal) error {
	if reported.Equal(derived) {
		return nil
	}
	return &MismatchError{Field: field, Reported: reported, Derived: derived}
}

// DeriveCashPosition returns the closing cash balance: cash_end when the
// API sent one, otherwise cash_start plus the net change.
func DeriveCashPosition(cf model.CashFlow) decimal.Decimal {
	if cf.CashEnd.Valid {
		return cf.CashEnd.Decimal
	}
	return cf.CashStart.Add(cf.NetChangeInCash)
}

// DeriveNetIncome is revenue minus expense, whatever net_income says.
func DeriveNetIncome(is model.IncomeStatement) decimal.Decimal {
	return is.Revenue.Sub(is.Expense)
}

// CheckNetIncome flags an API net_income that disagrees with
// DeriveNetIncome. An absent net_income is not a mismatch.
func CheckNetIncome(is model.IncomeStatement) error {
	if !is.NetIncome.Valid {
		return nil
	}
	return mismatch("net_income", is.NetIncome.Decimal, DeriveNetIncome(is))
}

// CheckBalanced flags a balance sheet whose assets differ from
// liabilities plus equity.
func CheckBalanced(bs model.BalanceSheet) error {
	return mismatch("total_assets", bs.TotalAssets, bs.LiabilitiesAndEquity())
}

// DeriveRetainedEnding is beginning + income - dividends.
func DeriveRetainedEnding(re model.RetainedEarnings) decimal.Decimal {
	return re.Beginning.Add(re.Income).Sub(re.Dividends)
}

// CheckRetained flags an API ending balance that disagrees with
// DeriveRetainedEnding.
func CheckRetained(re model.RetainedEarnings) error {
	if !re.Ending.Valid {
		return nil
	}
	return mismatch("retained_earnings.ending", re.Ending.Decimal, DeriveRetainedEnding(re))
}

// CheckCashFlow flags a net change in cash that is not the sum of the
// three activity sections.
func CheckCashFlow(cf model.CashFlow) error {
	sum := cf.Operating.Add(cf.Investing).Add(cf.Financing)
	return mismatch("net_change_in_cash", cf.NetChangeInCash, sum)
}

// Reconcile runs every cross-check over a summary and returns the
// mismatches found, in statement order.
func Reconcile(s model.Summary) []error {
	var errs []error
	for _, err := range []error{
		CheckNetIncome(s.IncomeStatement),
		CheckBalanced(s.BalanceSheet),
		CheckCashFlow(s.CashFlow),
		CheckRetained(s.RetainedEarnings),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// SplitDetails separates income statement lines into revenue and expense
// lines. Lines of other types are dropped.
func SplitDetails(lines []model.StatementLine) (revenue, expense []model.StatementLine) {
	for _, l := range lines {
		switch l.Type {
		case model.AccountTypeRevenue:
			revenue = append(revenue, l)
		case model.AccountTypeExpense:
			expense = append(expense, l)
		}
	}
	return revenue, expense
}

// SumEntities recomputes the admin summary footer from its per-UMKM rows.
func SumEntities(rows []model.EntitySummary) model.SummaryTotals {
	t := model.SummaryTotals{
		Revenue: decimal.Zero, Expense: decimal.Zero, NetIncome: decimal.Zero,
		Assets: decimal.Zero, Liabilities: decimal.Zero, Equity: decimal.Zero,
	}
	for _, r := range rows {
		t.Revenue = t.Revenue.Add(r.Revenue)
		t.Expense = t.Expense.Add(r.Expense)
		t.NetIncome = t.NetIncome.Add(r.NetIncome)
		t.Assets = t.Assets.Add(r.TotalAssets)
		t.Liabilities = t.Liabilities.Add(r.TotalLiabilities)
		t.Equity = t.Equity.Add(r.TotalEquity)
	}
	return t
}

// CheckTotals flags each footer figure of an admin summary that differs
// from the sum of its rows.
func CheckTotals(s model.AdminSummary) []error {
	sum := SumEntities(s.PerUMKM)
	var errs []error
	for _, c := range []struct {
		field             string
		reported, derived decimal.Decimal
	}{
		{"total_all.revenue", s.Total.Revenue, sum.Revenue},
		{"total_all.expense", s.Total.Expense, sum.Expense},
		{"total_all.net_income", s.Total.NetIncome, sum.NetIncome},
		{"total_all.assets", s.Total.Assets, sum.Assets},
		{"total_all.liabilities", s.Total.Liabilities, sum.Liabilities},
		{"total_all.equity", s.Total.Equity, sum.Equity},
	} {
		if err := mismatch(c.field, c.reported, c.derived); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
