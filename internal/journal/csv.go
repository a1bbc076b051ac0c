package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// LinesHeader is the CSV header for a draft's line items.
const LinesHeader = "account_id,debit,credit"

const (
	numFields = 3
	colAcctID = 0
	colDebit  = 1
	colCredit = 2
)

// ReadLines reads line items from CSV. Amounts are kept as typed
// ("1.000.000") and parsed only at validation. A leading header row is
// skipped when present.
func ReadLines(r io.Reader) ([]model.LineItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lines CSV: %w", err)
	}

	if len(records) > 0 && strings.Join(records[0], ",") == LinesHeader {
		records = records[1:]
	}

	var lines []model.LineItem
	for i, rec := range records {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes line items as CSV, including the header.
func WriteLines(w io.Writer, lines []model.LineItem) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LinesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, l := range lines {
		if err := cw.Write(MarshalLine(l)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a LineItem to a CSV row.
func MarshalLine(l model.LineItem) []string {
	row := make([]string, numFields)
	row[colAcctID] = strconv.Itoa(l.AccountID)
	row[colDebit] = l.Debit
	row[colCredit] = l.Credit
	return row
}

// UnmarshalLine converts a CSV row to a LineItem.
func UnmarshalLine(record []string) (model.LineItem, error) {
	if len(record) != numFields {
		return model.LineItem{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	accountID, err := strconv.Atoi(strings.TrimSpace(record[colAcctID]))
	if err != nil {
		return model.LineItem{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	return model.LineItem{
		AccountID: accountID,
		Debit:     strings.TrimSpace(record[colDebit]),
		Credit:    strings.TrimSpace(record[colCredit]),
	}, nil
}

// ParseLineSpec parses the command-line form "account:debit:credit",
// e.g. "101:1.000.000:" or "401::1.000.000".
func ParseLineSpec(spec string) (model.LineItem, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != numFields {
		return model.LineItem{}, fmt.Errorf("line %q: want account:debit:credit", spec)
	}
	line, err := UnmarshalLine(parts)
	if err != nil {
		return model.LineItem{}, fmt.Errorf("line %q: %w", spec, err)
	}
	return line, nil
}
