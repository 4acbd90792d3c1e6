package transactions

import (
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/money"
)

const (
	TypeIncome   = "INCOME"
	TypeExpense  = "EXPENSE"
	TypeTransfer = "TRANSFER"
)

type Transaction struct {
	ID                     string     `json:"id"`
	UserID                 string     `json:"user_id"`
	Type                   string     `json:"transaction_type"`
	Amount                 int64      `json:"amount_cents"`
	Date                   time.Time  `json:"transaction_date"`
	Description            *string    `json:"description"`
	CategoryID             *string    `json:"category_id"`
	CategoryName           *string    `json:"category_name,omitempty"`
	SourceAccountID        *string    `json:"source_account_id"`
	SourceAccountName      *string    `json:"source_account_name,omitempty"`
	DestinationAccountID   *string    `json:"destination_account_id"`
	DestinationAccountName *string    `json:"destination_account_name,omitempty"`
	RecurringTransactionID *string    `json:"recurring_transaction_id"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// AmountString renders the amount for responses.
func (t *Transaction) AmountString() string {
	return money.FormatCents(t.Amount)
}

type Meta struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	LastPage        int64 `json:"last_page"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}
