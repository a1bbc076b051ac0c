// Package report reshapes statement projections from the Ledger API into
// display-ready values and series, and cross-checks the figures the API
// reports against the ones derivable from its own inputs.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// CalendarMonths are the month labels of the monthly income/expense
// series, in calendar order.
var CalendarMonths = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ErrDuplicateMonth is returned when the raw series names a month twice
// and the policy is DuplicateReject.
var ErrDuplicateMonth = errors.New("duplicate month in series")

// DuplicatePolicy decides how repeated month labels are handled.
type DuplicatePolicy string

const (
	DuplicateReject   DuplicatePolicy = "reject"
	DuplicateLastWins DuplicatePolicy = "last_wins"
)

// ParseDuplicatePolicy maps a config value to a policy. Empty is reject.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.TrimSpace(s)); p {
	case "", DuplicateReject:
		return DuplicateReject, nil
	case DuplicateLastWins:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate month policy %q", s)
	}
}

// BuildMonthlySeries returns one entry per label in months, in that order.
// Months missing from raw are zero-filled; labels in raw that are not in
// months are ignored. Labels match case-insensitively.
func BuildMonthlySeries(raw []model.MonthlyEntry, months []string, policy DuplicatePolicy) ([]model.MonthlyEntry, error) {
	index := make(map[string]int, len(months))
	for i, m := range months {
		index[strings.ToLower(m)] = i
	}

	series := make([]model.MonthlyEntry, len(months))
	for i, m := range months {
		series[i] = model.MonthlyEntry{Month: m, Revenue: decimal.Zero, Expense: decimal.Zero}
	}

	seen := make(map[int]bool, len(raw))
	for _, e := range raw {
		i, ok := index[strings.ToLower(strings.TrimSpace(e.Month))]
		if !ok {
			continue
		}
		if seen[i] && policy != DuplicateLastWins {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMonth, months[i])
		}
		seen[i] = true
		series[i] = model.MonthlyEntry{Month: months[i], Revenue: e.Revenue, Expense: e.Expense}
	}
	return series, nil
}

// Field selects the value of a series entry to compare.
type Field func(model.MonthlyEntry) decimal.Decimal

var (
	FieldRevenue Field = func(e model.MonthlyEntry) decimal.Decimal { return e.Revenue }
	FieldExpense Field = func(e model.MonthlyEntry) decimal.Decimal { return e.Expense }
)

// Comparator reports whether candidate should replace the current best.
// It must be strict so that ties keep the entry seen first.
type Comparator func(candidate, best decimal.Decimal) bool

var (
	Max Comparator = func(c, b decimal.Decimal) bool { return c.GreaterThan(b) }
	Min Comparator = func(c, b decimal.Decimal) bool { return c.LessThan(b) }
)

// FindExtremum scans series once and returns the entry whose field wins
// under cmp. Ties keep the first entry. It returns false for an empty
// series.
func FindExtremum(series []model.MonthlyEntry, field Field, cmp Comparator) (model.MonthlyEntry, bool) {
	if len(series) == 0 {
		return model.MonthlyEntry{}, false
	}
	best := series[0]
	for _, e := range series[1:] {
		if cmp(field(e), field(best)) {
			best = e
		}
	}
	return best, true
}

// Trend is the calendar-year revenue/expense series with its revenue
// high and low months.
type Trend struct {
	Series     []model.MonthlyEntry
	MaxRevenue model.MonthlyEntry
	MinRevenue model.MonthlyEntry
	Revenue    decimal.Decimal
	Expense    decimal.Decimal
}

// BuildTrend builds the twelve-month series and its extremes.
func BuildTrend(raw []model.MonthlyEntry, policy DuplicatePolicy) (Trend, error) {
	series, err := BuildMonthlySeries(raw, CalendarMonths, policy)
	if err != nil {
		return Trend{}, err
	}

	t := Trend{Series: series, Revenue: decimal.Zero, Expense: decimal.Zero}
	t.MaxRevenue, _ = FindExtremum(series, FieldRevenue, Max)
	t.MinRevenue, _ = FindExtremum(series, FieldRevenue, Min)
	for _, e := range series {
		t.Revenue = t.Revenue.Add(e.Revenue)
		t.Expense = t.Expense.Add(e.Expense)
	}
	return t, nil
}
