package budgets

import (
	"strings"
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/money"
)

// Budget caps expense spending for one category in one calendar month.
type Budget struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CategoryID   string    `json:"category_id"`
	CategoryName *string   `json:"category_name,omitempty"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Amount       int64     `json:"amount_cents"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// normalizeDescription maps blank input to NULL so the column never stores
// empty or whitespace-only strings.
func normalizeDescription(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (b *Budget) AmountString() string {
	return money.FormatCents(b.Amount)
}

// Report is a budget joined with actual spending for its month.
type Report struct {
	Budget
	Spent      int64   `json:"spent_cents"`
	Remaining  int64   `json:"remaining_cents"`
	Percentage float64 `json:"percentage"`
}

// usage derives the spent/remaining/percentage triple. A zero cap reports
// zero percent rather than dividing by zero; remaining may go negative when
// the month overruns.
func usage(cap, spent int64) (remaining int64, percentage float64) {
	remaining = cap - spent
	if cap > 0 {
		percentage = float64(spent) / float64(cap) * 100
	}
	return remaining, percentage
}
