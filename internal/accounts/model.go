package accounts

import (
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/money"
)

const (
	TypeCash = "CASH"
	TypeBank = "BANK"
)

type Account struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	AccountName    string    `json:"account_name"`
	AccountType    string    `json:"account_type"`
	BankID         *string   `json:"bank_id"`
	BankName       *string   `json:"bank_name,omitempty"`
	InitialBalance int64     `json:"initial_balance_cents"`
	CurrentBalance int64     `json:"current_balance_cents"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Balance returns the current balance as a decimal string for responses.
func (a *Account) Balance() string {
	return money.FormatCents(a.CurrentBalance)
}

// validateBankRef enforces the type/bank pairing: a bank reference is
// required iff the account type is BANK.
func validateBankRef(accountType string, bankID *string) error {
	switch accountType {
	case TypeBank:
		if bankID == nil || *bankID == "" {
			return apperr.Validation("bank_id is required for bank account type")
		}
	case TypeCash:
		if bankID != nil && *bankID != "" {
			return apperr.Validation("bank_id is not allowed for non bank account type")
		}
	default:
		return apperr.Validation("account_type must be CASH or BANK")
	}
	return nil
}
