package recurring

import (
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/money"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

const (
	IntervalDaily   = "DAILY"
	IntervalWeekly  = "WEEKLY"
	IntervalMonthly = "MONTHLY"
	IntervalYearly  = "YEARLY"
)

// RecurringTransaction is a posting template. The scheduler turns it into
// real ledger transactions whenever next_run_date comes due.
type RecurringTransaction struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	Type                 string     `json:"transaction_type"`
	Amount               int64      `json:"amount_cents"`
	Description          *string    `json:"description"`
	CategoryID           *string    `json:"category_id"`
	SourceAccountID      *string    `json:"source_account_id"`
	DestinationAccountID *string    `json:"destination_account_id"`
	Interval             string     `json:"recur_interval"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	NextRunDate          time.Time  `json:"next_run_date"`
	LastRunDate          *time.Time `json:"last_run_date"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (r *RecurringTransaction) AmountString() string {
	return money.FormatCents(r.Amount)
}

// Expired reports whether the schedule's end date has passed. An expired
// template never posts again, no matter how far behind its next run date is.
func (r *RecurringTransaction) Expired(now time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(now)
}

func validInterval(s string) bool {
	switch s {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}
