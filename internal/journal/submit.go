package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/pembukuan-dev/pembukuan/internal/model"
	"github.com/pembukuan-dev/pembukuan/internal/money"
)

// TransactionCreator persists a transaction on the Ledger API.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req model.CreateTransactionRequest) (model.Transaction, error)
}

// Submitter gates drafts through ValidateDraft before handing them to a
// TransactionCreator.
type Submitter struct {
	accounts AccountLookup
	creator  TransactionCreator

	// UMKMFields includes cash_flow_category, is_dividend and category in
	// the request. The admin API does not accept them.
	UMKMFields bool
}

// NewSubmitter creates a Submitter.
func NewSubmitter(accounts AccountLookup, creator TransactionCreator) *Submitter {
	return &Submitter{accounts: accounts, creator: creator, UMKMFields: true}
}

// Submit validates d and, if it passes, creates it. A blocked draft
// returns a *DraftError and makes no call. The draft is reset only after
// the creator succeeds; on any failure it is left as it was.
func (s *Submitter) Submit(ctx context.Context, d *model.TransactionDraft) (model.Transaction, error) {
	if verrs := ValidateDraft(d, s.accounts); len(verrs) > 0 {
		return model.Transaction{}, &DraftError{Violations: verrs}
	}

	tx, err := s.creator.CreateTransaction(ctx, Serialize(d, s.UMKMFields))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("creating transaction: %w", err)
	}

	d.Reset()
	return tx, nil
}

// Serialize converts a draft into the create-transaction payload. Blank
// rows are dropped and amounts are parsed to exact decimals.
func Serialize(d *model.TransactionDraft, umkmFields bool) model.CreateTransactionRequest {
	req := model.CreateTransactionRequest{
		Date:        d.Date,
		Description: strings.TrimSpace(d.Description),
		Details:     make([]model.DetailRequest, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		if blank(l) {
			continue
		}
		req.Details = append(req.Details, model.DetailRequest{
			AccountID: l.AccountID,
			Debit:     money.ParseAmount(l.Debit),
			Credit:    money.ParseAmount(l.Credit),
		})
	}

	if umkmFields {
		req.CashFlowCategory = d.CashFlowCategory
		if req.CashFlowCategory == "" {
			req.CashFlowCategory = model.CashFlowOperating
		}
		dividend := d.IsDividend
		req.IsDividend = &dividend
		req.Category = d.Category
		if req.Category == "" {
			req.Category = model.DefaultCategory
		}
	}
	return req
}
