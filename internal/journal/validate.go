package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/money"
)

// Rule identifies which draft rule a ValidationError violates.
type Rule string

const (
	RuleDate          Rule = "date"
	RuleCategory      Rule = "cash_flow_category"
	RuleNoLines       Rule = "no_lines"
	RuleAccount       Rule = "account"
	RuleAmount        Rule = "amount"
	RulePrecision     Rule = "precision"
	RuleBothSides     Rule = "both_sides"
	RuleEmptyLine     Rule = "empty_line"
	RuleNormalBalance Rule = "normal_balance"
	RuleUnbalanced    Rule = "unbalanced"
)

// NoLine is the Line of a ValidationError that concerns the whole draft.
const NoLine = -1

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule    Rule
	Line    int
	Message string
}

func (e ValidationError) Error() string {
	if e.Line == NoLine {
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line+1, e.Rule, e.Message)
}

// DraftError is returned when a draft is blocked from submission.
type DraftError struct {
	Violations []ValidationError
}

func (e *DraftError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "transaction blocked: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation is of the given rule.
func (e *DraftError) Has(rule Rule) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// AccountLookup resolves account IDs against the chart of accounts.
type AccountLookup interface {
	Get(id int) (model.Account, bool)
}

// Totals holds the summed debit and credit columns of a draft.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Difference is debit minus credit.
func (t Totals) Difference() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}

// ComputeTotals sums the debit and credit fields of lines independently.
// Empty or unparseable amounts count as zero.
func ComputeTotals(lines []model.LineItem) Totals {
	t := Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range lines {
		t.Debit = t.Debit.Add(money.ParseAmount(l.Debit))
		t.Credit = t.Credit.Add(money.ParseAmount(l.Credit))
	}
	return t
}

// IsBalanced reports whether debits equal credits and the total is
// positive. An all-zero draft is never balanced.
func IsBalanced(t Totals) bool {
	return t.Debit.Equal(t.Credit) && t.Debit.IsPositive()
}

// blank reports whether the line is an untouched form row.
func blank(l model.LineItem) bool {
	return l.AccountID == 0 && strings.TrimSpace(l.Debit) == "" && strings.TrimSpace(l.Credit) == ""
}

var hundred = decimal.NewFromInt(100)

// ValidateLine checks one line against its account. At most one side may
// carry an amount, and that side must be the account's normal balance: a
// credit-normal account takes no debit and a debit-normal account takes no
// credit. The rule applies to every line without exception.
func ValidateLine(line model.LineItem, account model.Account) error {
	debit, errD := money.ParseAmountStrict(line.Debit)
	credit, errC := money.ParseAmountStrict(line.Credit)
	if errD != nil {
		return ValidationError{Rule: RuleAmount, Line: NoLine, Message: fmt.Sprintf("invalid debit amount %q", line.Debit)}
	}
	if errC != nil {
		return ValidationError{Rule: RuleAmount, Line: NoLine, Message: fmt.Sprintf("invalid credit amount %q", line.Credit)}
	}

	for _, amt := range []decimal.Decimal{debit, credit} {
		if !amt.Mul(hundred).Equal(amt.Mul(hundred).Floor()) {
			return ValidationError{Rule: RulePrecision, Line: NoLine, Message: fmt.Sprintf("amount %s has more than 2 decimal places", amt)}
		}
	}

	hasDebit, hasCredit := !debit.IsZero(), !credit.IsZero()
	switch {
	case hasDebit && hasCredit:
		return ValidationError{Rule: RuleBothSides, Line: NoLine, Message: "line must not carry both debit and credit"}
	case !hasDebit && !hasCredit:
		return ValidationError{Rule: RuleEmptyLine, Line: NoLine, Message: "line has no amount"}
	}

	switch account.Normal() {
	case model.NormalCredit:
		if hasDebit {
			return ValidationError{Rule: RuleNormalBalance, Line: NoLine,
				Message: fmt.Sprintf("account %d (%s) has a credit normal balance and takes no debit", account.ID, account.Name)}
		}
	case model.NormalDebit:
		if hasCredit {
			return ValidationError{Rule: RuleNormalBalance, Line: NoLine,
				Message: fmt.Sprintf("account %d (%s) has a debit normal balance and takes no credit", account.ID, account.Name)}
		}
	}
	return nil
}

// ValidateDraft checks every rule a draft must satisfy before submission
// and returns all violations: header fields, then lines in order, then
// the balance. Blank rows (no account, no amounts) are ignored.
func ValidateDraft(d *model.TransactionDraft, accounts AccountLookup) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(d.Date) == "" {
		errs = append(errs, ValidationError{Rule: RuleDate, Line: NoLine, Message: "date is required"})
	} else if _, err := time.Parse(model.DateFormat, d.Date); err != nil {
		errs = append(errs, ValidationError{Rule: RuleDate, Line: NoLine, Message: fmt.Sprintf("date %q is not YYYY-MM-DD", d.Date)})
	}

	if d.CashFlowCategory != "" && !d.CashFlowCategory.Valid() {
		errs = append(errs, ValidationError{Rule: RuleCategory, Line: NoLine,
			Message: fmt.Sprintf("unknown cash flow category %q", d.CashFlowCategory)})
	}

	filled := 0
	for i, line := range d.Lines {
		if blank(line) {
			continue
		}
		filled++

		acct, ok := accounts.Get(line.AccountID)
		if !ok {
			msg := "account is required"
			if line.AccountID != 0 {
				msg = fmt.Sprintf("unknown account %d", line.AccountID)
			}
			errs = append(errs, ValidationError{Rule: RuleAccount, Line: i, Message: msg})
			continue
		}

		var ve ValidationError
		if err := ValidateLine(line, acct); errors.As(err, &ve) {
			ve.Line = i
			errs = append(errs, ve)
		}
	}
	if filled == 0 {
		errs = append(errs, ValidationError{Rule: RuleNoLines, Line: NoLine, Message: "transaction has no lines"})
	}

	totals := ComputeTotals(d.Lines)
	if !IsBalanced(totals) {
		errs = append(errs, ValidationError{Rule: RuleUnbalanced, Line: NoLine,
			Message: fmt.Sprintf("debit (%s) and credit (%s) are not balanced", money.Format(totals.Debit), money.Format(totals.Credit))})
	}

	return errs
}
