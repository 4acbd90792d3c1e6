package transactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// InsertTx writes a transaction row inside an existing database transaction.
// The recurring scheduler shares this path so templated postings hit the
// exact same ledger shape as request-driven ones.
func InsertTx(ctx context.Context, tx pgx.Tx, t *Transaction) error {
	return tx.QueryRow(ctx, `
INSERT INTO transactions (user_id, transaction_type, amount, transaction_date, description,
                          category_id, source_account_id, destination_account_id, recurring_transaction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at`,
		t.UserID, t.Type, t.Amount, t.Date, t.Description,
		t.CategoryID, t.SourceAccountID, t.DestinationAccountID, t.RecurringTransactionID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Create inserts the row and applies its balance effects as one atomic unit.
// Either everything commits or nothing does; a transaction recorded without
// its balance update would corrupt the ledger.
func (r *Repo) Create(ctx context.Context, t *Transaction) error {
	effects, err := BalanceEffects(t.Type, t.Amount, t.SourceAccountID, t.DestinationAccountID)
	if err != nil {
		return err
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := InsertTx(ctx, tx, t); err != nil {
		return err
	}
	for _, e := range effects {
		if err := accounts.ApplyDelta(ctx, tx, e.AccountID, e.Delta); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const selectTransaction = `
SELECT t.id, t.user_id, t.transaction_type, t.amount, t.transaction_date, t.description,
       t.category_id, c.category_name,
       t.source_account_id, sa.account_name,
       t.destination_account_id, da.account_name,
       t.recurring_transaction_id, t.created_at, t.updated_at
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN accounts sa ON sa.id = t.source_account_id
LEFT JOIN accounts da ON da.id = t.destination_account_id`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Date, &t.Description,
		&t.CategoryID, &t.CategoryName,
		&t.SourceAccountID, &t.SourceAccountName,
		&t.DestinationAccountID, &t.DestinationAccountName,
		&t.RecurringTransactionID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) GetOwned(ctx context.Context, id, userID string) (*Transaction, error) {
	t, err := scanTransaction(r.Pool.QueryRow(ctx, selectTransaction+`
WHERE t.id = $1 AND t.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

type Filter struct {
	AccountID  string
	Type       string
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// sortColumns whitelists sortable fields; anything else falls back to date.
var sortColumns = map[string]string{
	"transaction_date": "t.transaction_date",
	"amount":           "t.amount",
	"created_at":       "t.created_at",
}

func orderClause(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "t.transaction_date"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", t.id " + dir
}

func (r *Repo) List(ctx context.Context, userID string, f Filter) ([]Transaction, Meta, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	var sb strings.Builder
	sb.WriteString(`WHERE t.user_id = $1`)
	args := []any{userID}

	add := func(clause string, val any) {
		args = append(args, val)
		sb.WriteString(fmt.Sprintf(" AND "+clause, len(args)))
	}

	if f.Type != "" {
		add(`t.transaction_type = $%d`, f.Type)
	}
	if f.CategoryID != "" {
		add(`t.category_id = $%d`, f.CategoryID)
	}
	if f.StartDate != nil {
		add(`t.transaction_date >= $%d`, *f.StartDate)
	}
	if f.EndDate != nil {
		add(`t.transaction_date <= $%d`, *f.EndDate)
	}
	if f.Search != "" {
		add(`t.description ILIKE $%d`, "%"+f.Search+"%")
	}
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		sb.WriteString(fmt.Sprintf(" AND (t.source_account_id = $%d OR t.destination_account_id = $%d)", len(args), len(args)))
	}

	where := sb.String()

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t `+where, args...).Scan(&total); err != nil {
		return nil, Meta{}, err
	}

	query := selectTransaction + ` ` + where +
		` ORDER BY ` + orderClause(f.SortBy, f.SortOrder) +
		` LIMIT ` + strconv.Itoa(f.Limit) +
		` OFFSET ` + strconv.Itoa((f.Page-1)*f.Limit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, Meta{}, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, f.Limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, Meta{}, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, Meta{}, err
	}

	lastPage := (total + int64(f.Limit) - 1) / int64(f.Limit)
	meta := Meta{
		Total:           total,
		Page:            f.Page,
		Limit:           f.Limit,
		LastPage:        lastPage,
		HasNextPage:     int64(f.Page*f.Limit) < total,
		HasPreviousPage: f.Page > 1,
	}
	return out, meta, nil
}

// UpdateFields persists the editable subset: description, date, category.
// Amount, type and accounts are immutable after creation, so no balance
// recalculation ever happens here.
func (r *Repo) UpdateFields(ctx context.Context, t *Transaction) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE transactions SET description = $1, transaction_date = $2, category_id = $3, updated_at = NOW()
WHERE id = $4 AND user_id = $5`,
		t.Description, t.Date, t.CategoryID, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

// Delete reverses the stored balance effects and removes the row in one
// atomic unit. The reversal fails closed if the row's account references
// are inconsistent with its type.
func (r *Repo) Delete(ctx context.Context, id, userID string) (*Transaction, error) {
	t, err := r.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	effects, err := ReversalEffects(t)
	if err != nil {
		return nil, err
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, e := range effects {
		if err := accounts.ApplyDelta(ctx, tx, e.AccountID, e.Delta); err != nil {
			return nil, err
		}
	}

	ct, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, apperr.Integrity("transaction %s disappeared during delete", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}
