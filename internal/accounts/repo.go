package accounts

import (
	"context"
	"errors"

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

// ApplyDelta shifts an account balance by signed cents inside the caller's
// transaction. The arithmetic happens in the UPDATE itself, never as a
// read-modify-write in Go, so concurrent ledger mutations against the same
// account serialize at the storage layer.
func ApplyDelta(ctx context.Context, tx pgx.Tx, accountID string, delta int64) error {
	ct, err := tx.Exec(ctx,
		`UPDATE accounts SET current_balance = current_balance + $1, updated_at = NOW() WHERE id = $2`,
		delta, accountID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return apperr.Integrity("balance update for account %s touched %d rows", accountID, ct.RowsAffected())
	}
	return nil
}

const selectAccount = `
SELECT a.id, a.user_id, a.account_name, a.account_type, a.bank_id, b.name,
       a.initial_balance, a.current_balance, a.currency, a.created_at, a.updated_at
FROM accounts a
LEFT JOIN banks b ON b.id = a.bank_id`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.UserID, &a.AccountName, &a.AccountType, &a.BankID, &a.BankName,
		&a.InitialBalance, &a.CurrentBalance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Insert(ctx context.Context, a *Account) error {
	return r.Pool.QueryRow(ctx, `
INSERT INTO accounts (user_id, account_name, account_type, bank_id, initial_balance, current_balance, currency)
VALUES ($1, $2, $3, $4, $5, $5, $6)
RETURNING id, created_at, updated_at`,
		a.UserID, a.AccountName, a.AccountType, a.BankID, a.InitialBalance, a.Currency,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := r.Pool.Query(ctx, selectAccount+`
WHERE a.user_id = $1
ORDER BY a.account_name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetOwned loads an account and enforces ownership. A missing row and a
// mismatched owner both come back as a permission failure: the ledger never
// distinguishes them.
func (r *Repo) GetOwned(ctx context.Context, id, userID string) (*Account, error) {
	a, err := scanAccount(r.Pool.QueryRow(ctx, selectAccount+`
WHERE a.id = $1 AND a.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Permission("account not found or access denied")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// UpdateMeta changes non-balance fields only. Balances move exclusively
// through ApplyDelta.
func (r *Repo) UpdateMeta(ctx context.Context, a *Account) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE accounts SET account_name = $1, account_type = $2, bank_id = $3, currency = $4, updated_at = NOW()
WHERE id = $5 AND user_id = $6`,
		a.AccountName, a.AccountType, a.BankID, a.Currency, a.ID, a.UserID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.Permission("account not found or access denied")
	}
	return nil
}

// Delete removes an account unless the ledger still references it.
func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	var refs int64
	err := r.Pool.QueryRow(ctx, `
SELECT COUNT(*) FROM transactions
WHERE source_account_id = $1 OR destination_account_id = $1`, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Validation("account has related transactions")
	}

	ct, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.Permission("account not found or access denied")
	}
	return nil
}

// PlanOf returns the owner's subscription plan code.
func (r *Repo) PlanOf(ctx context.Context, userID string) (string, error) {
	var plan string
	err := r.Pool.QueryRow(ctx, `SELECT subscription_plan FROM users WHERE id = $1`, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("user not found")
	}
	return plan, err
}
