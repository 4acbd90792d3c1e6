package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/money"
)

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Plan is a purchasable subscription tier. Prices are in cents; the Snap
// charge uses the discounted price when one is set.
type Plan struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Price          int64  `json:"price_cents"`
	DiscountPrice  *int64 `json:"discount_price_cents"`
	DurationMonths *int   `json:"duration_months"`
}

// ChargeAmount is the price actually billed, in cents.
func (p *Plan) ChargeAmount() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Plan) PriceString() string {
	return money.FormatCents(p.ChargeAmount())
}

func (s *Store) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, code, name, price, discount_price, duration_months
FROM subscription_plans
ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.DiscountPrice, &p.DurationMonths); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) PlanByCode(ctx context.Context, code string) (*Plan, error) {
	var p Plan
	err := s.Pool.QueryRow(ctx, `
SELECT id, code, name, price, discount_price, duration_months
FROM subscription_plans WHERE code = $1`, code).
		Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.DiscountPrice, &p.DurationMonths)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("subscription plan not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Payment is one checkout attempt against one plan.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	PlanCode  string    `json:"plan_code"`
	Amount    int64     `json:"amount_cents"`
	SnapToken *string   `json:"snap_token,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Store) InsertPayment(ctx context.Context, p *Payment) error {
	return s.Pool.QueryRow(ctx, `
INSERT INTO payment_transactions (order_id, user_id, plan_id, amount, snap_token, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`,
		p.OrderID, p.UserID, p.PlanID, p.Amount, p.SnapToken, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *Store) PaymentByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	err := s.Pool.QueryRow(ctx, `
SELECT pt.id, pt.order_id, pt.user_id, pt.plan_id, sp.code, pt.amount, pt.snap_token, pt.status, pt.created_at, pt.updated_at
FROM payment_transactions pt
JOIN subscription_plans sp ON sp.id = pt.plan_id
WHERE pt.order_id = $1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.UserID, &p.PlanID, &p.PlanCode, &p.Amount, &p.SnapToken, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]Payment, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT pt.id, pt.order_id, pt.user_id, pt.plan_id, sp.code, pt.amount, pt.snap_token, pt.status, pt.created_at, pt.updated_at
FROM payment_transactions pt
JOIN subscription_plans sp ON sp.id = pt.plan_id
WHERE pt.user_id = $1
ORDER BY pt.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &p.PlanID, &p.PlanCode, &p.Amount, &p.SnapToken, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SettlePayment records the gateway's verdict and, on success, activates the
// subscription, all in one database transaction: the old active subscription
// expires, a new one starts, and the user's plan flips together.
func (s *Store) SettlePayment(ctx context.Context, p *Payment, status string, rawNotification []byte) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
UPDATE payment_transactions SET status = $1, midtrans_response = $2, updated_at = NOW()
WHERE id = $3 AND status = 'PENDING'`, status, rawNotification, p.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// Already settled by an earlier notification delivery.
		return tx.Commit(ctx)
	}

	if status == PaymentSuccess {
		var months int
		var durationMonths *int
		if err := tx.QueryRow(ctx, `SELECT duration_months FROM subscription_plans WHERE id = $1`, p.PlanID).Scan(&durationMonths); err != nil {
			return err
		}
		if durationMonths != nil {
			months = *durationMonths
		}

		if _, err := tx.Exec(ctx, `
UPDATE user_subscriptions SET status = 'EXPIRED', end_date = NOW()
WHERE user_id = $1 AND status = 'ACTIVE'`, p.UserID); err != nil {
			return err
		}

		start := time.Now().UTC()
		var end *time.Time
		if months > 0 {
			e := start.AddDate(0, months, 0)
			end = &e
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO user_subscriptions (user_id, plan_id, status, start_date, end_date)
VALUES ($1, $2, 'ACTIVE', $3, $4)`, p.UserID, p.PlanID, start, end); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
UPDATE users SET subscription_plan = $1 WHERE id = $2`, p.PlanCode, p.UserID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ActiveSubscription returns the user's current subscription, if any.
type Subscription struct {
	ID        string     `json:"id"`
	PlanCode  string     `json:"plan_code"`
	PlanName  string     `json:"plan_name"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (s *Store) ActiveSubscription(ctx context.Context, userID string) (*Subscription, error) {
	var sub Subscription
	err := s.Pool.QueryRow(ctx, `
SELECT us.id, sp.code, sp.name, us.status, us.start_date, us.end_date
FROM user_subscriptions us
JOIN subscription_plans sp ON sp.id = us.plan_id
WHERE us.user_id = $1 AND us.status = 'ACTIVE'
ORDER BY us.start_date DESC
LIMIT 1`, userID).
		Scan(&sub.ID, &sub.PlanCode, &sub.PlanName, &sub.Status, &sub.StartDate, &sub.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
