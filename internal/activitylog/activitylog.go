// Package activitylog records the mutations a user issued against the
// Ledger API in a local CSV audit trail.
package activitylog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the log's name inside the state directory.
const FileName = "activity-log.csv"

// Header is the CSV header of the log.
const Header = "timestamp,profile,action,details,ref"

// Actions recorded by the CLI.
const (
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionRegister          = "register"
	ActionCreateTransaction = "create_transaction"
	ActionDeleteTransaction = "delete_transaction"
	ActionCreateUMKM        = "create_umkm"
	ActionUpdateUMKM        = "update_umkm"
	ActionDeleteUMKM        = "delete_umkm"
	ActionApproveUMKM       = "approve_umkm"
	ActionRejectUMKM        = "reject_umkm"
	ActionDownload          = "download"
)

const (
	numFields    = 5
	colTimestamp = 0
	colProfile   = 1
	colAction    = 2
	colDetails   = 3
	colRef       = 4
)

// Entry is one row of the log.
type Entry struct {
	Timestamp time.Time
	Profile   string
	Action    string
	Details   string
	Ref       string // ID of the affected record, if any
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colProfile] = e.Profile
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colRef] = e.Ref
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Profile:   record[colProfile],
		Action:    record[colAction],
		Details:   record[colDetails],
		Ref:       record[colRef],
	}, nil
}

// Append writes entries to <stateDir>/activity-log.csv, creating the file
// and header if needed.
func Append(stateDir string, entries ...Entry) error {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	path := filepath.Join(stateDir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns every entry of <stateDir>/activity-log.csv, oldest first.
// A missing file yields no entries.
func Read(stateDir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(stateDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Filter returns the entries of profile, or all entries when profile is
// empty, keeping at most the last n (all when n <= 0).
func Filter(entries []Entry, profile string, n int) []Entry {
	var out []Entry
	for _, e := range entries {
		if profile == "" || e.Profile == profile {
			out = append(out, e)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
