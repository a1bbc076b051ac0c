package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pembukuan-dev/pembukuan/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
}

// NewService creates a Service from a slice of accounts. Accounts the API
// sent without a normal balance get the default for their type.
func NewService(accounts []model.Account) *Service {
	filled := make([]model.Account, len(accounts))
	byID := make(map[int]model.Account, len(accounts))
	for i, a := range accounts {
		a.NormalBalance = a.Normal()
		filled[i] = a
		byID[a.ID] = a
	}
	return &Service{accounts: filled, byID: byID}
}

// Load reads a chart of accounts CSV file and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Group is the accounts of one type.
type Group struct {
	Type     model.AccountType
	Accounts []model.Account
}

// Grouped returns the accounts grouped by type in statement order
// (asset, liability, equity, revenue, expense). Empty groups are omitted.
// Accounts with an unrecognised type are collected last.
func (s *Service) Grouped() []Group {
	var groups []Group
	for _, t := range model.AccountTypes {
		if accts := s.ByType(t); len(accts) > 0 {
			groups = append(groups, Group{Type: t, Accounts: accts})
		}
	}

	var other []model.Account
	for _, a := range s.accounts {
		if !a.Type.Valid() {
			other = append(other, a)
		}
	}
	if len(other) > 0 {
		groups = append(groups, Group{Type: "other", Accounts: other})
	}
	return groups
}

// Save writes the chart of accounts to path, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
