package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar date layout used on the wire.
const DateFormat = "2006-01-02"

// CashFlowCategory classifies a transaction's cash effect.
type CashFlowCategory string

const (
	CashFlowOperating CashFlowCategory = "operating"
	CashFlowInvesting CashFlowCategory = "investing"
	CashFlowFinancing CashFlowCategory = "financing"
)

// Valid reports whether c is one of the three activity classes.
func (c CashFlowCategory) Valid() bool {
	switch c {
	case CashFlowOperating, CashFlowInvesting, CashFlowFinancing:
		return true
	}
	return false
}

// DefaultCategory is the transaction category the entry form always sends.
const DefaultCategory = "general"

// LineItem is one row of a draft as typed by the user. Amounts are
// locale-formatted strings ("1.000.000") and are parsed only when totals
// are computed or the draft is serialized.
type LineItem struct {
	AccountID int
	Debit     string
	Credit    string
}

// TransactionDraft is the mutable state behind the transaction entry form.
type TransactionDraft struct {
	Date             string // YYYY-MM-DD
	Description      string
	CashFlowCategory CashFlowCategory
	IsDividend       bool
	Category         string
	Lines            []LineItem
}

// NewDraft returns a draft in its initial state: one empty line.
func NewDraft() *TransactionDraft {
	d := &TransactionDraft{}
	d.Reset()
	return d
}

// Reset discards all input and leaves a single empty line.
func (d *TransactionDraft) Reset() {
	d.Date = ""
	d.Description = ""
	d.CashFlowCategory = CashFlowOperating
	d.IsDividend = false
	d.Category = DefaultCategory
	d.Lines = []LineItem{{}}
}

// AddLine appends a line and returns its index.
func (d *TransactionDraft) AddLine(line LineItem) int {
	d.Lines = append(d.Lines, line)
	return len(d.Lines) - 1
}

// RemoveLine deletes the line at i. The last remaining line is never
// removed; it is cleared instead.
func (d *TransactionDraft) RemoveLine(i int) {
	if i < 0 || i >= len(d.Lines) {
		return
	}
	if len(d.Lines) == 1 {
		d.Lines[0] = LineItem{}
		return
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
}

// DetailRequest is one line of a create-transaction payload.
type DetailRequest struct {
	AccountID int             `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Date             string           `json:"date"`
	Description      string           `json:"description"`
	Details          []DetailRequest  `json:"details"`
	CashFlowCategory CashFlowCategory `json:"cash_flow_category,omitempty"`
	IsDividend       *bool            `json:"is_dividend,omitempty"`
	Category         string           `json:"category,omitempty"`
}

// TransactionDetail is a persisted line item as returned by the API.
type TransactionDetail struct {
	ID        int             `json:"id,omitempty"`
	AccountID int             `json:"account_id"`
	Account   *Account        `json:"account,omitempty"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// Transaction is a persisted journal transaction.
type Transaction struct {
	ID               int                 `json:"id"`
	UMKMID           int                 `json:"umkm_id,omitempty"`
	UMKM             *UMKM               `json:"umkm,omitempty"`
	Date             string              `json:"date"`
	Description      string              `json:"description"`
	CashFlowCategory CashFlowCategory    `json:"cash_flow_category,omitempty"`
	IsDividend       Flag                `json:"is_dividend"`
	Details          []TransactionDetail `json:"details"`
}

// Day parses the transaction date. The API sends either a bare date or
// a full timestamp; only the calendar date is kept.
func (t Transaction) Day() (time.Time, bool) {
	s := strings.TrimSpace(t.Date)
	if len(s) < len(DateFormat) {
		return time.Time{}, false
	}
	day, err := time.Parse(DateFormat, s[:len(DateFormat)])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Totals sums the debit and credit columns of the stored details.
func (t Transaction) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, d := range t.Details {
		debit = debit.Add(d.Debit)
		credit = credit.Add(d.Credit)
	}
	return debit, credit
}
