package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

const (
	numFields = 4
	colID     = 0
	colName   = 1
	colType   = 2
	colNormal = 3
)

var header = []string{"account_id", "account_name", "account_type", "normal_balance"}

// ReadAccounts reads a chart of accounts CSV. The first row is a header.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a chart of accounts CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colNormal] = string(acct.NormalBalance)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	typ := model.AccountType(record[colType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account_type %q", record[colType])
	}

	normal := model.NormalBalance(record[colNormal])
	switch normal {
	case "", model.NormalDebit, model.NormalCredit:
	default:
		return model.Account{}, fmt.Errorf("unknown normal_balance %q", record[colNormal])
	}

	return model.Account{
		ID:            id,
		Name:          record[colName],
		Type:          typ,
		NormalBalance: normal,
	}, nil
}
