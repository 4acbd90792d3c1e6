package transactions

import (
	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

// BalanceEffect is one signed balance delta against one account. A ledger
// mutation always applies all of its effects inside the same database
// transaction as the row change.
type BalanceEffect struct {
	AccountID string
	Delta     int64
}

// BalanceEffects returns the account deltas a new transaction of the given
// shape must apply: credit the destination for INCOME, debit the source for
// EXPENSE, both for TRANSFER.
func BalanceEffects(txType string, amount int64, sourceID, destinationID *string) ([]BalanceEffect, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}

	switch txType {
	case TypeIncome:
		if destinationID == nil || *destinationID == "" {
			return nil, apperr.Validation("destination_account_id is required for income")
		}
		if sourceID != nil && *sourceID != "" {
			return nil, apperr.Validation("source_account_id is not allowed for income")
		}
		return []BalanceEffect{{AccountID: *destinationID, Delta: amount}}, nil

	case TypeExpense:
		if sourceID == nil || *sourceID == "" {
			return nil, apperr.Validation("source_account_id is required for expense")
		}
		if destinationID != nil && *destinationID != "" {
			return nil, apperr.Validation("destination_account_id is not allowed for expense")
		}
		return []BalanceEffect{{AccountID: *sourceID, Delta: -amount}}, nil

	case TypeTransfer:
		if sourceID == nil || *sourceID == "" {
			return nil, apperr.Validation("source_account_id is required for transfer")
		}
		if destinationID == nil || *destinationID == "" {
			return nil, apperr.Validation("destination_account_id is required for transfer")
		}
		if *sourceID == *destinationID {
			return nil, apperr.Validation("source and destination accounts must differ")
		}
		return []BalanceEffect{
			{AccountID: *sourceID, Delta: -amount},
			{AccountID: *destinationID, Delta: amount},
		}, nil
	}

	return nil, apperr.Validation("transaction_type must be INCOME, EXPENSE or TRANSFER")
}

// ReversalEffects returns the exact inverse of a stored transaction's
// original balance effects, for delete. A stored row whose account
// references no longer satisfy its type is corrupt; the reversal fails
// closed instead of silently skipping a side.
func ReversalEffects(t *Transaction) ([]BalanceEffect, error) {
	effects, err := BalanceEffects(t.Type, t.Amount, t.SourceAccountID, t.DestinationAccountID)
	if err != nil {
		return nil, apperr.Integrity("transaction %s has inconsistent account references: %v", t.ID, err)
	}
	for i := range effects {
		effects[i].Delta = -effects[i].Delta
	}
	return effects, nil
}
