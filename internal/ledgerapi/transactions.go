package ledgerapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// TransactionFilter narrows GET /transactions. Zero fields are omitted.
type TransactionFilter struct {
	UMKMID int
	Month  int
	Year   int
}

func (f TransactionFilter) values() url.Values {
	v := url.Values{}
	if f.UMKMID != 0 {
		v.Set("umkm_id", strconv.Itoa(f.UMKMID))
	}
	if f.Month != 0 {
		v.Set("month", strconv.Itoa(f.Month))
	}
	if f.Year != 0 {
		v.Set("year", strconv.Itoa(f.Year))
	}
	return v
}

// Transactions lists transactions with their details.
func (c *Client) Transactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", f.values(), nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Transaction fetches one transaction.
func (c *Client) Transaction(ctx context.Context, id int) (model.Transaction, error) {
	var tx model.Transaction
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil, nil, &tx); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// CreateTransaction posts a new transaction. It satisfies
// journal.TransactionCreator.
func (c *Client) CreateTransaction(ctx context.Context, req model.CreateTransactionRequest) (model.Transaction, error) {
	var tx model.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, req, &tx); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, nil, nil)
}
