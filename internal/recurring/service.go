package recurring

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/categories"
	"github.com/firmanasgani/my-wallets-api/internal/transactions"
)

// Service owns template validation and the posting run. Posting reuses the
// same effect computation and row insert as request-driven transactions, so
// a scheduled occurrence is indistinguishable from a manual one apart from
// its template reference.
type Service struct {
	Pool       *pgxpool.Pool
	Repo       *Repo
	Accounts   *accounts.Repo
	Categories *categories.Repo
}

func NewService(pool *pgxpool.Pool, repo *Repo, accts *accounts.Repo, cats *categories.Repo) *Service {
	return &Service{Pool: pool, Repo: repo, Accounts: accts, Categories: cats}
}

// Validate applies the same shape and ownership rules a direct transaction
// would face, so a template can never describe a posting that would be
// rejected at run time.
func (s *Service) Validate(ctx context.Context, rt *RecurringTransaction) error {
	if _, err := transactions.BalanceEffects(rt.Type, rt.Amount, rt.SourceAccountID, rt.DestinationAccountID); err != nil {
		return err
	}
	if rt.SourceAccountID != nil {
		if _, err := s.Accounts.GetOwned(ctx, *rt.SourceAccountID, rt.UserID); err != nil {
			return err
		}
	}
	if rt.DestinationAccountID != nil {
		if _, err := s.Accounts.GetOwned(ctx, *rt.DestinationAccountID, rt.UserID); err != nil {
			return err
		}
	}
	if rt.CategoryID != nil && *rt.CategoryID != "" {
		if _, err := s.Categories.GetTyped(ctx, *rt.CategoryID, rt.UserID, rt.Type); err != nil {
			return err
		}
	} else {
		rt.CategoryID = nil
	}
	return nil
}

// Create stores the template and posts the first occurrence, dated at the
// start date, in the same database transaction. The template therefore
// always exists with exactly one posting behind it; the scheduler owns
// every occurrence after that.
func (s *Service) Create(ctx context.Context, rt *RecurringTransaction) error {
	if err := s.Validate(ctx, rt); err != nil {
		return err
	}
	effects, err := transactions.BalanceEffects(rt.Type, rt.Amount, rt.SourceAccountID, rt.DestinationAccountID)
	if err != nil {
		return err
	}

	rt.Status = StatusActive
	first := rt.StartDate
	rt.LastRunDate = &first
	rt.NextRunDate = step(rt.StartDate, rt.Interval)

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := InsertTx(ctx, tx, rt); err != nil {
		return err
	}

	t := &transactions.Transaction{
		UserID:                 rt.UserID,
		Type:                   rt.Type,
		Amount:                 rt.Amount,
		Date:                   rt.StartDate,
		Description:            rt.Description,
		CategoryID:             rt.CategoryID,
		SourceAccountID:        rt.SourceAccountID,
		DestinationAccountID:   rt.DestinationAccountID,
		RecurringTransactionID: &rt.ID,
	}
	if err := transactions.InsertTx(ctx, tx, t); err != nil {
		return err
	}
	for _, e := range effects {
		if err := accounts.ApplyDelta(ctx, tx, e.AccountID, e.Delta); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Tick processes every due template once. Each template posts in its own
// database transaction; one failure is logged and skipped so the rest of
// the batch still runs.
func (s *Service) Tick(ctx context.Context, now time.Time) error {
	due, err := s.Repo.Due(ctx, now)
	if err != nil {
		return err
	}

	for i := range due {
		rt := &due[i]

		if rt.Expired(now) {
			if err := s.Repo.Deactivate(ctx, rt.ID); err != nil {
				slog.Error("recurring deactivate failed", "recurring_id", rt.ID, "error", err)
			} else {
				slog.Info("recurring template expired", "recurring_id", rt.ID)
			}
			continue
		}

		if err := s.post(ctx, rt, now); err != nil {
			slog.Error("recurring posting failed", "recurring_id", rt.ID, "user_id", rt.UserID, "error", err)
			continue
		}
		slog.Info("recurring transaction posted",
			"recurring_id", rt.ID, "type", rt.Type, "amount", rt.AmountString(), "next_run", step(rt.NextRunDate, rt.Interval))
	}
	return nil
}

// post writes one occurrence and advances the template atomically.
func (s *Service) post(ctx context.Context, rt *RecurringTransaction, now time.Time) error {
	effects, err := transactions.BalanceEffects(rt.Type, rt.Amount, rt.SourceAccountID, rt.DestinationAccountID)
	if err != nil {
		return err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t := &transactions.Transaction{
		UserID:                 rt.UserID,
		Type:                   rt.Type,
		Amount:                 rt.Amount,
		Date:                   now,
		Description:            rt.Description,
		CategoryID:             rt.CategoryID,
		SourceAccountID:        rt.SourceAccountID,
		DestinationAccountID:   rt.DestinationAccountID,
		RecurringTransactionID: &rt.ID,
	}
	if err := transactions.InsertTx(ctx, tx, t); err != nil {
		return err
	}
	for _, e := range effects {
		if err := accounts.ApplyDelta(ctx, tx, e.AccountID, e.Delta); err != nil {
			return err
		}
	}
	if err := Advance(ctx, tx, rt.ID, rt.NextRunDate, step(rt.NextRunDate, rt.Interval)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
