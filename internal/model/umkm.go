package model

import "github.com/shopspring/decimal"

// UMKM is a registered micro/small business, the tenant that owns
// transactions. Field names follow the API's Indonesian keys.
type UMKM struct {
	ID          int             `json:"id,omitempty"`
	Name        string          `json:"nama_umkm"`
	Address     string          `json:"alamat,omitempty"`
	NIB         string          `json:"nib"`
	PIRT        string          `json:"pirt,omitempty"`
	Phone       string          `json:"no_hp,omitempty"`
	Category    string          `json:"kategori_umkm,omitempty"`
	CashBalance decimal.Decimal `json:"saldo_kas"`
	Approved    Flag            `json:"is_approved,omitempty"`
}

// Registration is the self-service sign-up payload for POST /umkm/register.
type Registration struct {
	Name                 string `json:"nama_umkm"`
	Address              string `json:"alamat"`
	NIB                  string `json:"nib"`
	PIRT                 string `json:"pirt"`
	Phone                string `json:"no_hp"`
	Category             string `json:"kategori_umkm"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Admin is the operator account returned by the admin login.
type Admin struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
