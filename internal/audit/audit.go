package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Action types written by the feature packages.
const (
	ActionAccountCreate         = "ACCOUNT_CREATE"
	ActionAccountUpdate         = "ACCOUNT_UPDATE"
	ActionAccountDelete         = "ACCOUNT_DELETE"
	ActionCategoryCreate        = "CATEGORY_CREATE"
	ActionCategoryUpdate        = "CATEGORY_UPDATE"
	ActionCategoryDelete        = "CATEGORY_DELETE"
	ActionTransactionIncome     = "TRANSACTION_CREATE_INCOME"
	ActionTransactionExpense    = "TRANSACTION_CREATE_EXPENSE"
	ActionTransactionTransfer   = "TRANSACTION_CREATE_TRANSFER"
	ActionTransactionUpdate     = "TRANSACTION_UPDATE"
	ActionTransactionDelete     = "TRANSACTION_DELETE"
	ActionRecurringCreate       = "RECURRING_CREATE"
	ActionRecurringDelete       = "RECURRING_DELETE"
	ActionBudgetCreate          = "BUDGET_CREATE"
	ActionBudgetUpdate          = "BUDGET_UPDATE"
	ActionBudgetDelete          = "BUDGET_DELETE"
	ActionSubscriptionCheckout  = "SUBSCRIPTION_CHECKOUT"
	ActionPaymentSuccess        = "PAYMENT_SUCCESS"
	ActionPaymentFailed         = "PAYMENT_FAILED"
)

type Entry struct {
	UserID      string
	Action      string
	EntityType  string
	EntityID    string
	Description string
	Details     any
	IP          string
	UserAgent   string
}

// Write inserts an audit entry and returns any storage error so callers can
// decide what to do with it.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var details []byte
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = b
	}

	var userID any
	if e.UserID != "" {
		userID = e.UserID
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action_type, entity_type, entity_id, description, details, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, userID, e.Action, e.EntityType, e.EntityID, e.Description, details, e.IP, e.UserAgent)

	return err
}

// Record is the fire-and-forget path used after a ledger unit commits.
// It runs detached from the request so a slow or failing log sink can never
// change the outcome of the primary operation.
func Record(db *pgxpool.Pool, e Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := Write(ctx, db, e); err != nil {
			slog.Warn("audit write failed", "action", e.Action, "entity_id", e.EntityID, "error", err)
		}
	}()
}
