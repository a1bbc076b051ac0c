package accounts

import "github.com/pembukuan-dev/pembukuan/internal/model"

// DefaultChart returns a small chart of accounts for a trading UMKM.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: 101, Name: "Kas", Type: model.AccountTypeAsset, NormalBalance: model.NormalDebit},
		{ID: 102, Name: "Bank", Type: model.AccountTypeAsset, NormalBalance: model.NormalDebit},
		{ID: 103, Name: "Piutang Usaha", Type: model.AccountTypeAsset, NormalBalance: model.NormalDebit},
		{ID: 104, Name: "Persediaan Barang", Type: model.AccountTypeAsset, NormalBalance: model.NormalDebit},
		{ID: 121, Name: "Peralatan", Type: model.AccountTypeAsset, NormalBalance: model.NormalDebit},
		{ID: 201, Name: "Utang Usaha", Type: model.AccountTypeLiability, NormalBalance: model.NormalCredit},
		{ID: 202, Name: "Utang Bank", Type: model.AccountTypeLiability, NormalBalance: model.NormalCredit},
		{ID: 301, Name: "Modal Pemilik", Type: model.AccountTypeEquity, NormalBalance: model.NormalCredit},
		{ID: 302, Name: "Laba Ditahan", Type: model.AccountTypeEquity, NormalBalance: model.NormalCredit},
		{ID: 401, Name: "Pendapatan Penjualan", Type: model.AccountTypeRevenue, NormalBalance: model.NormalCredit},
		{ID: 402, Name: "Pendapatan Jasa", Type: model.AccountTypeRevenue, NormalBalance: model.NormalCredit},
		{ID: 501, Name: "Beban Pokok Penjualan", Type: model.AccountTypeExpense, NormalBalance: model.NormalDebit},
		{ID: 502, Name: "Beban Gaji", Type: model.AccountTypeExpense, NormalBalance: model.NormalDebit},
		{ID: 503, Name: "Beban Sewa", Type: model.AccountTypeExpense, NormalBalance: model.NormalDebit},
		{ID: 504, Name: "Beban Listrik dan Air", Type: model.AccountTypeExpense, NormalBalance: model.NormalDebit},
	}
}
