package journal

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pembukuan-dev/pembukuan/internal/accounts"
	"github.com/pembukuan-dev/pembukuan/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// Chart used throughout: 101 Kas (debit), 201 Utang Usaha (credit),
// 401 Pendapatan Penjualan (credit), 501 Beban Pokok Penjualan (debit).
var chart = accounts.NewService(accounts.DefaultChart())

func debit(acct int, amt string) model.LineItem  { return model.LineItem{AccountID: acct, Debit: amt} }
func credit(acct int, amt string) model.LineItem { return model.LineItem{AccountID: acct, Credit: amt} }

func draft(lines ...model.LineItem) *model.TransactionDraft {
	d := model.NewDraft()
	d.Date = "2025-03-14"
	d.Description = "Penjualan tunai"
	d.Lines = lines
	return d
}

func rules(errs []ValidationError) []Rule {
	out := make([]Rule, len(errs))
	for i, e := range errs {
		out[i] = e.Rule
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals([]model.LineItem{
		debit(101, "1.000.000"),
		debit(501, "250.000,50"),
		credit(401, "1.250.000,50"),
		{AccountID: 102, Debit: "abc", Credit: ""},
		{},
	})
	assert.True(t, dec("1250000.5").Equal(totals.Debit), "debit = %s", totals.Debit)
	assert.True(t, dec("1250000.5").Equal(totals.Credit), "credit = %s", totals.Credit)
	assert.True(t, totals.Difference().IsZero())
}

func TestComputeTotals_ReorderInvariant(t *testing.T) {
	lines := []model.LineItem{
		debit(101, "1.000"),
		debit(102, "2.500,25"),
		credit(401, "700"),
		credit(201, "12.345"),
		debit(501, "x"),
		credit(402, ""),
		debit(503, "999.999.999"),
	}
	want := ComputeTotals(lines)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]model.LineItem(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputeTotals(shuffled)
		assert.True(t, want.Debit.Equal(got.Debit))
		assert.True(t, want.Credit.Equal(got.Credit))
	}
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name   string
		debit  string
		credit string
		want   bool
	}{
		{"equal positive", "100", "100", true},
		{"equal with fraction", "100.50", "100.5", true},
		{"unequal", "500000", "400000", false},
		{"both zero", "0", "0", false},
		{"credit only", "0", "100", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBalanced(Totals{Debit: dec(tt.debit), Credit: dec(tt.credit)}))
		})
	}
}

func TestValidateLine(t *testing.T) {
	kas, _ := chart.Get(101)
	sales, _ := chart.Get(401)

	tests := []struct {
		name    string
		line    model.LineItem
		account model.Account
		rule    Rule
	}{
		{"debit on debit-normal", debit(101, "1.000"), kas, ""},
		{"credit on credit-normal", credit(401, "1.000"), sales, ""},
		{"credit on debit-normal", credit(101, "1.000"), kas, RuleNormalBalance},
		{"debit on credit-normal", debit(401, "1.000"), sales, RuleNormalBalance},
		{"both sides", model.LineItem{AccountID: 101, Debit: "1", Credit: "1"}, kas, RuleBothSides},
		{"no amount", model.LineItem{AccountID: 101}, kas, RuleEmptyLine},
		{"zero amount", debit(101, "0"), kas, RuleEmptyLine},
		{"bad amount", debit(101, "sepuluh"), kas, RuleAmount},
		{"negative", debit(101, "-5"), kas, RuleAmount},
		{"three places", debit(101, "1,505"), kas, RulePrecision},
		{"zero opposite side is fine", model.LineItem{AccountID: 101, Debit: "10", Credit: "0"}, kas, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLine(tt.line, tt.account)
			if tt.rule == "" {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.rule, ve.Rule)
		})
	}
}

func TestValidateLine_AccountWithoutNormalBalance(t *testing.T) {
	// Falls back to the type default: liability is credit-normal.
	acct := model.Account{ID: 9, Name: "Utang", Type: model.AccountTypeLiability}
	var ve ValidationError
	require.ErrorAs(t, ValidateLine(debit(9, "10"), acct), &ve)
	assert.Equal(t, RuleNormalBalance, ve.Rule)
}

func TestValidateDraft_Balanced(t *testing.T) {
	d := draft(debit(101, "1.000.000"), credit(401, "1.000.000"))
	assert.Empty(t, ValidateDraft(d, chart))
}

func TestValidateDraft_Unbalanced(t *testing.T) {
	d := draft(debit(101, "500.000"), credit(401, "400.000"))
	errs := ValidateDraft(d, chart)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleUnbalanced, errs[0].Rule)
	assert.Equal(t, NoLine, errs[0].Line)
	assert.Contains(t, errs[0].Message, "500.000")
	assert.Contains(t, errs[0].Message, "400.000")
}

func TestValidateDraft_IgnoresBlankRows(t *testing.T) {
	d := draft(debit(101, "1.000"), model.LineItem{}, credit(401, "1.000"))
	assert.Empty(t, ValidateDraft(d, chart))
}

func TestValidateDraft_EmptyDraft(t *testing.T) {
	d := model.NewDraft()
	d.Date = "2025-01-01"
	assert.Equal(t, []Rule{RuleNoLines, RuleUnbalanced}, rules(ValidateDraft(d, chart)))
}

func TestValidateDraft_HeaderRules(t *testing.T) {
	d := draft(debit(101, "1.000"), credit(401, "1.000"))
	d.Date = ""
	d.CashFlowCategory = "speculative"
	assert.Equal(t, []Rule{RuleDate, RuleCategory}, rules(ValidateDraft(d, chart)))

	d.Date = "14/03/2025"
	d.CashFlowCategory = model.CashFlowFinancing
	errs := ValidateDraft(d, chart)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleDate, errs[0].Rule)
}

func TestValidateDraft_LineRules(t *testing.T) {
	d := draft(
		debit(101, "1.000"),
		model.LineItem{Debit: "500"},
		debit(999, "100"),
		debit(401, "200"),
		credit(401, "1.800"),
	)
	errs := ValidateDraft(d, chart)
	require.Len(t, errs, 3)

	assert.Equal(t, RuleAccount, errs[0].Rule)
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, "account is required", errs[0].Message)

	assert.Equal(t, RuleAccount, errs[1].Rule)
	assert.Equal(t, 2, errs[1].Line)

	assert.Equal(t, RuleNormalBalance, errs[2].Rule)
	assert.Equal(t, 3, errs[2].Line)
	assert.Contains(t, errs[2].Error(), "line 4:")
}

func TestDraftError(t *testing.T) {
	err := &DraftError{Violations: []ValidationError{
		{Rule: RuleDate, Line: NoLine, Message: "date is required"},
		{Rule: RuleBothSides, Line: 0, Message: "both"},
	}}
	assert.True(t, err.Has(RuleDate))
	assert.False(t, err.Has(RuleUnbalanced))
	assert.Equal(t, "transaction blocked: date: date is required; line 1: both_sides: both", err.Error())
}
