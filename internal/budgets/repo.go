package budgets

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const selectBudget = `
SELECT b.id, b.user_id, b.category_id, c.category_name, b.year, b.month, b.amount, b.description, b.created_at, b.updated_at
FROM budgets b
LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(row pgx.Row) (*Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Year, &b.Month, &b.Amount, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert creates a budget; the storage-level unique constraint on
// (user, category, year, month) surfaces as a conflict.
func (r *Repo) Insert(ctx context.Context, b *Budget) error {
	err := r.Pool.QueryRow(ctx, `
INSERT INTO budgets (user_id, category_id, year, month, amount, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`,
		b.UserID, b.CategoryID, b.Year, b.Month, b.Amount, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("budget already exists for this category and month")
	}
	return err
}

func (r *Repo) ListByMonth(ctx context.Context, userID string, year, month int) ([]Budget, error) {
	rows, err := r.Pool.Query(ctx, selectBudget+`
WHERE b.user_id = $1 AND b.year = $2 AND b.month = $3
ORDER BY c.category_name ASC`, userID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repo) GetOwned(ctx context.Context, id, userID string) (*Budget, error) {
	b, err := scanBudget(r.Pool.QueryRow(ctx, selectBudget+`
WHERE b.id = $1 AND b.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("budget not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// Update changes the cap and description only. Moving a budget to another
// category or month means delete and re-create.
func (r *Repo) Update(ctx context.Context, b *Budget) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE budgets SET amount = $1, description = $2, updated_at = NOW()
WHERE id = $3 AND user_id = $4`, b.Amount, b.Description, b.ID, b.UserID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("budget not found")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("budget not found")
	}
	return nil
}

// SpentByCategory sums EXPENSE transactions per category over one calendar
// month. Income and transfers never count against a budget.
func (r *Repo) SpentByCategory(ctx context.Context, userID string, year, month int) (map[string]int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := r.Pool.Query(ctx, `
SELECT category_id, COALESCE(SUM(amount), 0)
FROM transactions
WHERE user_id = $1 AND transaction_type = 'EXPENSE' AND category_id IS NOT NULL
  AND transaction_date >= $2 AND transaction_date < $3
GROUP BY category_id`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spent := make(map[string]int64)
	for rows.Next() {
		var categoryID string
		var sum int64
		if err := rows.Scan(&categoryID, &sum); err != nil {
			return nil, err
		}
		spent[categoryID] = sum
	}
	return spent, rows.Err()
}
