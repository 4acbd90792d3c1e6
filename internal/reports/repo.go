package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// Summary aggregates the ledger over a date range. Transfers move money
// between the user's own accounts, so they never count as income or expense.
type Summary struct {
	TotalIncome  int64   `json:"total_income_cents"`
	TotalExpense int64   `json:"total_expense_cents"`
	Net          int64   `json:"net_cents"`
	SavingsRate  float64 `json:"savings_rate"`
}

func (r *Repo) Summary(ctx context.Context, userID string, start, end time.Time) (*Summary, error) {
	var s Summary
	err := r.Pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'INCOME'), 0),
       COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'EXPENSE'), 0)
FROM transactions
WHERE user_id = $1 AND transaction_date >= $2 AND transaction_date < $3`,
		userID, start, end).Scan(&s.TotalIncome, &s.TotalExpense)
	if err != nil {
		return nil, err
	}

	s.Net = s.TotalIncome - s.TotalExpense
	if s.TotalIncome > 0 {
		s.SavingsRate = float64(s.Net) / float64(s.TotalIncome) * 100
	}
	return &s, nil
}

// CategorySlice is one category's share of spending or earning in a range.
type CategorySlice struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        int64   `json:"total_cents"`
	Percentage   float64 `json:"percentage"`
}

func (r *Repo) ByCategory(ctx context.Context, userID, txType string, start, end time.Time) ([]CategorySlice, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT t.category_id, c.category_name, SUM(t.amount) AS total
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.user_id = $1 AND t.transaction_type = $2
  AND t.transaction_date >= $3 AND t.transaction_date < $4
GROUP BY t.category_id, c.category_name
ORDER BY total DESC`, userID, txType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategorySlice, 0)
	var grand int64
	for rows.Next() {
		var s CategorySlice
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Total); err != nil {
			return nil, err
		}
		grand += s.Total
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if grand > 0 {
		for i := range out {
			out[i].Percentage = float64(out[i].Total) / float64(grand) * 100
		}
	}
	return out, nil
}

// TrendPoint is one bucket of the income/expense time series.
type TrendPoint struct {
	Period  string `json:"period"`
	Income  int64  `json:"income_cents"`
	Expense int64  `json:"expense_cents"`
}

// Trend buckets the ledger by day or month between start and end.
func (r *Repo) Trend(ctx context.Context, userID, granularity string, start, end time.Time) ([]TrendPoint, error) {
	trunc := "month"
	format := "YYYY-MM"
	if granularity == "day" {
		trunc = "day"
		format = "YYYY-MM-DD"
	}

	rows, err := r.Pool.Query(ctx, `
SELECT to_char(date_trunc($1, transaction_date), $2) AS period,
       COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'INCOME'), 0),
       COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'EXPENSE'), 0)
FROM transactions
WHERE user_id = $3 AND transaction_date >= $4 AND transaction_date < $5
GROUP BY period
ORDER BY period ASC`, trunc, format, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TrendPoint, 0)
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Period, &p.Income, &p.Expense); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
