package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const selectRecurring = `
SELECT id, user_id, transaction_type, amount, description, category_id,
       source_account_id, destination_account_id, recur_interval,
       start_date, end_date, next_run_date, last_run_date, status, created_at, updated_at
FROM recurring_transactions`

func scanRecurring(row pgx.Row) (*RecurringTransaction, error) {
	var r RecurringTransaction
	err := row.Scan(&r.ID, &r.UserID, &r.Type, &r.Amount, &r.Description, &r.CategoryID,
		&r.SourceAccountID, &r.DestinationAccountID, &r.Interval,
		&r.StartDate, &r.EndDate, &r.NextRunDate, &r.LastRunDate, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertTx writes the template inside the caller's transaction so the
// template and its first posting commit together.
func InsertTx(ctx context.Context, tx pgx.Tx, rt *RecurringTransaction) error {
	return tx.QueryRow(ctx, `
INSERT INTO recurring_transactions (user_id, transaction_type, amount, description, category_id,
                                    source_account_id, destination_account_id, recur_interval,
                                    start_date, end_date, next_run_date, last_run_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at, updated_at`,
		rt.UserID, rt.Type, rt.Amount, rt.Description, rt.CategoryID,
		rt.SourceAccountID, rt.DestinationAccountID, rt.Interval,
		rt.StartDate, rt.EndDate, rt.NextRunDate, rt.LastRunDate, rt.Status,
	).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]RecurringTransaction, error) {
	rows, err := r.Pool.Query(ctx, selectRecurring+`
WHERE user_id = $1
ORDER BY next_run_date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecurringTransaction, 0)
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

func (r *Repo) GetOwned(ctx context.Context, id, userID string) (*RecurringTransaction, error) {
	rt, err := scanRecurring(r.Pool.QueryRow(ctx, selectRecurring+`
WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("recurring transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Due returns every active template whose next run date has passed.
func (r *Repo) Due(ctx context.Context, now time.Time) ([]RecurringTransaction, error) {
	rows, err := r.Pool.Query(ctx, selectRecurring+`
WHERE status = $1 AND next_run_date <= $2
ORDER BY next_run_date ASC`, StatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecurringTransaction, 0)
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

// Advance moves the template's run pointers after a successful posting.
// It runs inside the same database transaction as the posting so a crash
// can never double-post or skip an occurrence.
func Advance(ctx context.Context, tx pgx.Tx, id string, ranAt, next time.Time) error {
	ct, err := tx.Exec(ctx, `
UPDATE recurring_transactions SET last_run_date = $1, next_run_date = $2, updated_at = NOW()
WHERE id = $3`, ranAt, next, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return apperr.Integrity("recurring template %s missing during advance", id)
	}
	return nil
}

func (r *Repo) Deactivate(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx, `
UPDATE recurring_transactions SET status = $1, updated_at = NOW()
WHERE id = $2`, StatusInactive, id)
	return err
}

func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM recurring_transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("recurring transaction not found")
	}
	return nil
}
