package recurring

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/money"
	"github.com/firmanasgani/my-wallets-api/internal/transactions"
)

type Handler struct {
	Service *Service
	DB      *pgxpool.Pool
}

func NewHandler(svc *Service, db *pgxpool.Pool) *Handler {
	return &Handler{Service: svc, DB: db}
}

type createRecurringRequest struct {
	Type                 string  `json:"transaction_type"`
	Amount               string  `json:"amount"`
	Description          *string `json:"description"`
	CategoryID           *string `json:"category_id"`
	SourceAccountID      *string `json:"source_account_id"`
	DestinationAccountID *string `json:"destination_account_id"`
	Interval             string  `json:"recur_interval"`
	StartDate            string  `json:"start_date"`
	EndDate              *string `json:"end_date"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body createRecurringRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}

	if body.Type != transactions.TypeIncome && body.Type != transactions.TypeExpense && body.Type != transactions.TypeTransfer {
		return apperr.Validation("transaction_type must be INCOME, EXPENSE or TRANSFER")
	}
	if !validInterval(body.Interval) {
		return apperr.Validation("recur_interval must be DAILY, WEEKLY, MONTHLY or YEARLY")
	}
	amount, err := money.ParsePositiveAmount(body.Amount)
	if err != nil {
		return err
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return apperr.Validation("start_date must be RFC3339 or YYYY-MM-DD")
	}

	rt := &RecurringTransaction{
		UserID:               userID,
		Type:                 body.Type,
		Amount:               amount,
		Description:          body.Description,
		CategoryID:           body.CategoryID,
		SourceAccountID:      normalizeRef(body.SourceAccountID),
		DestinationAccountID: normalizeRef(body.DestinationAccountID),
		Interval:             body.Interval,
		StartDate:            start,
	}
	if body.EndDate != nil && *body.EndDate != "" {
		end, err := parseDate(*body.EndDate)
		if err != nil {
			return apperr.Validation("end_date must be RFC3339 or YYYY-MM-DD")
		}
		if end.Before(start) {
			return apperr.Validation("end_date must not be before start_date")
		}
		rt.EndDate = &end
	}

	if err := h.Service.Create(c.UserContext(), rt); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionRecurringCreate,
		EntityType:  "RECURRING_TRANSACTION",
		EntityID:    rt.ID,
		Description: "Recurring " + rt.Type + " scheduled " + rt.Interval,
		Details:     fiber.Map{"recurring_id": rt.ID, "interval": rt.Interval, "amount": rt.AmountString()},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(rt)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	items, err := h.Service.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rt, err := h.Service.Repo.GetOwned(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(rt)
}

// Delete removes the template only. Transactions it already posted stay in
// the ledger with their template reference cleared by the schema.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Repo.Delete(c.UserContext(), id, userID); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionRecurringDelete,
		EntityType:  "RECURRING_TRANSACTION",
		EntityID:    id,
		Description: "Recurring transaction deleted",
		Details:     fiber.Map{"recurring_id": id},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "recurring transaction deleted successfully"})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func normalizeRef(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func parseID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("invalid recurring transaction id")
	}
	return id, nil
}
