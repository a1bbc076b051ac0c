package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, at := range AccountTypes {
		if t == at {
			return true
		}
	}
	return false
}

// NormalBalance is the side on which an account's balance increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

// DefaultNormalBalance returns the conventional side for an account type.
// Unknown types are treated as debit-normal.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return NormalCredit
	default:
		return NormalDebit
	}
}

// Account is one entry of the chart of accounts served by GET /accounts.
type Account struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Type          AccountType   `json:"type"`
	NormalBalance NormalBalance `json:"normal_balance,omitempty"`
}

// Normal returns the account's normal balance, falling back to the
// type default when the API did not send one.
func (a Account) Normal() NormalBalance {
	if a.NormalBalance == NormalDebit || a.NormalBalance == NormalCredit {
		return a.NormalBalance
	}
	return DefaultNormalBalance(a.Type)
}
