package billing

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/money"
)

type Handler struct {
	Store  *Store
	Client *Client
	DB     *pgxpool.Pool
}

func NewHandler(store *Store, client *Client, db *pgxpool.Pool) *Handler {
	return &Handler{Store: store, Client: client, DB: db}
}

func (h *Handler) Plans(c *fiber.Ctx) error {
	plans, err := h.Store.ListPlans(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": plans})
}

func (h *Handler) MySubscription(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	sub, err := h.Store.ActiveSubscription(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return c.JSON(fiber.Map{"data": nil, "plan": "FREE"})
	}
	return c.JSON(fiber.Map{"data": sub, "plan": sub.PlanCode})
}

func (h *Handler) Payments(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	payments, err := h.Store.ListPaymentsByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payments})
}

type checkoutRequest struct {
	PlanCode string `json:"plan_code"`
}

// Checkout opens a Snap session for a paid plan and records the pending
// payment. The plan only changes once the webhook confirms settlement.
func (h *Handler) Checkout(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body checkoutRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if body.PlanCode == "" {
		return apperr.Validation("plan_code is required")
	}

	ctx := c.UserContext()
	plan, err := h.Store.PlanByCode(ctx, body.PlanCode)
	if err != nil {
		return err
	}
	if plan.ChargeAmount() <= 0 {
		return apperr.Validation("plan %s cannot be purchased", plan.Code)
	}

	var username, email string
	if err := h.DB.QueryRow(ctx, `SELECT username, email FROM users WHERE id = $1`, userID).Scan(&username, &email); err != nil {
		return err
	}

	orderID := "ORDER-" + uuid.NewString()

	// Midtrans bills in whole currency units; amounts are stored in cents.
	snap, err := h.Client.CreateTransaction(ctx, orderID, plan.ChargeAmount()/100, plan.Code, plan.Name, username, email)
	if err != nil {
		return err
	}

	p := &Payment{
		OrderID:   orderID,
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    plan.ChargeAmount(),
		SnapToken: &snap.Token,
		Status:    PaymentPending,
	}
	if err := h.Store.InsertPayment(ctx, p); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionSubscriptionCheckout,
		EntityType:  "PAYMENT",
		EntityID:    p.ID,
		Description: "Checkout started for plan " + plan.Code,
		Details:     fiber.Map{"order_id": orderID, "plan": plan.Code, "amount": money.FormatCents(p.Amount)},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":     orderID,
		"snap_token":   snap.Token,
		"redirect_url": snap.RedirectURL,
	})
}

type webhookNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// Webhook handles Midtrans payment notifications. Unsigned or mis-signed
// notifications are rejected before any lookup; redelivered notifications
// for settled payments are acknowledged without effect.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	var n webhookNotification
	if err := c.BodyParser(&n); err != nil {
		return apperr.Validation("invalid notification body")
	}
	if n.OrderID == "" || n.SignatureKey == "" {
		return apperr.Validation("order_id and signature_key are required")
	}
	if h.Client.ServerKey == "" {
		return apperr.Permission("payment gateway is not configured")
	}
	if !VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, h.Client.ServerKey, n.SignatureKey) {
		return apperr.Permission("invalid notification signature")
	}

	ctx := c.UserContext()
	p, err := h.Store.PaymentByOrderID(ctx, n.OrderID)
	if err != nil {
		return err
	}

	status := MapStatus(n.TransactionStatus, n.FraudStatus)
	if status == PaymentPending {
		return c.JSON(fiber.Map{"message": "notification acknowledged"})
	}

	if err := h.Store.SettlePayment(ctx, p, status, c.Body()); err != nil {
		return err
	}

	action := audit.ActionPaymentSuccess
	description := "Payment settled for order " + p.OrderID
	if status == PaymentFailed {
		action = audit.ActionPaymentFailed
		description = "Payment failed for order " + p.OrderID
	}
	audit.Record(h.DB, audit.Entry{
		UserID:      p.UserID,
		Action:      action,
		EntityType:  "PAYMENT",
		EntityID:    p.ID,
		Description: description,
		Details:     fiber.Map{"order_id": p.OrderID, "plan": p.PlanCode, "status": status, "gateway_status": n.TransactionStatus},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "notification processed", "status": status})
}
