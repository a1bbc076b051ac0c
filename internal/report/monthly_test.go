package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func entry(month, revenue, expense string) model.MonthlyEntry {
	return model.MonthlyEntry{Month: month, Revenue: dec(revenue), Expense: dec(expense)}
}

func TestBuildMonthlySeries_ZeroFills(t *testing.T) {
	raw := []model.MonthlyEntry{
		entry("Oct", "300", "10"),
		entry("Feb", "500", "20"),
	}

	series, err := BuildMonthlySeries(raw, CalendarMonths, DuplicateReject)
	require.NoError(t, err)
	require.Len(t, series, 12)

	for i, e := range series {
		assert.Equal(t, CalendarMonths[i], e.Month)
	}
	assert.True(t, dec("500").Equal(series[1].Revenue))
	assert.True(t, dec("300").Equal(series[9].Revenue))
	assert.True(t, series[0].Revenue.IsZero())
	assert.True(t, series[0].Expense.IsZero())
	assert.True(t, series[11].Revenue.IsZero())
}

func TestBuildMonthlySeries_AlwaysTwelve(t *testing.T) {
	inputs := [][]model.MonthlyEntry{
		nil,
		{entry("Dec", "1", "1"), entry("Jan", "2", "2")},
		{entry("Smarch", "9", "9")},
		{entry("jan", "1", "0"), entry(" FEB ", "2", "0")},
	}
	for _, raw := range inputs {
		series, err := BuildMonthlySeries(raw, CalendarMonths, DuplicateReject)
		require.NoError(t, err)
		require.Len(t, series, 12)
		for i, e := range series {
			assert.Equal(t, CalendarMonths[i], e.Month)
		}
	}
}

func TestBuildMonthlySeries_LabelsNormalized(t *testing.T) {
	series, err := BuildMonthlySeries([]model.MonthlyEntry{entry(" feb", "7", "0")}, CalendarMonths, DuplicateReject)
	require.NoError(t, err)
	assert.Equal(t, "Feb", series[1].Month)
	assert.True(t, dec("7").Equal(series[1].Revenue))
}

func TestBuildMonthlySeries_Duplicates(t *testing.T) {
	raw := []model.MonthlyEntry{entry("Mar", "100", "0"), entry("Mar", "250", "5")}

	_, err := BuildMonthlySeries(raw, CalendarMonths, DuplicateReject)
	assert.ErrorIs(t, err, ErrDuplicateMonth)
	assert.ErrorContains(t, err, "Mar")

	series, err := BuildMonthlySeries(raw, CalendarMonths, DuplicateLastWins)
	require.NoError(t, err)
	assert.True(t, dec("250").Equal(series[2].Revenue))
	assert.True(t, dec("5").Equal(series[2].Expense))
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicateReject, p)

	p, err = ParseDuplicatePolicy("last_wins")
	require.NoError(t, err)
	assert.Equal(t, DuplicateLastWins, p)

	_, err = ParseDuplicatePolicy("first_wins")
	assert.Error(t, err)
}

func TestFindExtremum(t *testing.T) {
	series := []model.MonthlyEntry{
		entry("Jan", "100", "0"),
		entry("Feb", "500", "0"),
		entry("Mar", "0", "0"),
	}

	got, ok := FindExtremum(series, FieldRevenue, Max)
	require.True(t, ok)
	assert.Equal(t, "Feb", got.Month)

	got, ok = FindExtremum(series, FieldRevenue, Min)
	require.True(t, ok)
	assert.Equal(t, "Mar", got.Month)
}

func TestFindExtremum_TiesKeepFirst(t *testing.T) {
	series, err := BuildMonthlySeries(nil, CalendarMonths, DuplicateReject)
	require.NoError(t, err)

	got, _ := FindExtremum(series, FieldRevenue, Max)
	assert.Equal(t, "Jan", got.Month)
	got, _ = FindExtremum(series, FieldExpense, Min)
	assert.Equal(t, "Jan", got.Month)

	tied := []model.MonthlyEntry{entry("Apr", "1", "9"), entry("May", "3", "9"), entry("Jun", "3", "2")}
	got, _ = FindExtremum(tied, FieldRevenue, Max)
	assert.Equal(t, "May", got.Month)
	got, _ = FindExtremum(tied, FieldExpense, Max)
	assert.Equal(t, "Apr", got.Month)
}

func TestFindExtremum_Empty(t *testing.T) {
	_, ok := FindExtremum(nil, FieldRevenue, Max)
	assert.False(t, ok)
}

func TestBuildTrend(t *testing.T) {
	trend, err := BuildTrend([]model.MonthlyEntry{
		entry("Jan", "100", "40"),
		entry("Jun", "900", "300"),
		entry("Jul", "50", "10"),
	}, DuplicateReject)
	require.NoError(t, err)

	assert.Len(t, trend.Series, 12)
	assert.Equal(t, "Jun", trend.MaxRevenue.Month)
	assert.Equal(t, "Feb", trend.MinRevenue.Month, "first zero-filled month")
	assert.True(t, dec("1050").Equal(trend.Revenue))
	assert.True(t, dec("350").Equal(trend.Expense))
}
