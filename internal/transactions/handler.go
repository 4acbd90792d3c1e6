package transactions

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/categories"
	"github.com/firmanasgani/my-wallets-api/internal/money"
)

type Handler struct {
	Repo       *Repo
	Accounts   *accounts.Repo
	Categories *categories.Repo
	DB         *pgxpool.Pool
}

func NewHandler(repo *Repo, accts *accounts.Repo, cats *categories.Repo, db *pgxpool.Pool) *Handler {
	return &Handler{Repo: repo, Accounts: accts, Categories: cats, DB: db}
}

type createTransactionRequest struct {
	Amount               string  `json:"amount"`
	Date                 string  `json:"transaction_date"`
	Description          *string `json:"description"`
	CategoryID           *string `json:"category_id"`
	SourceAccountID      *string `json:"source_account_id"`
	DestinationAccountID *string `json:"destination_account_id"`
}

// parseDate accepts a full timestamp or a bare date; an empty value means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("transaction_date must be RFC3339 or YYYY-MM-DD")
}

func (h *Handler) CreateIncome(c *fiber.Ctx) error {
	return h.create(c, TypeIncome, audit.ActionTransactionIncome)
}

func (h *Handler) CreateExpense(c *fiber.Ctx) error {
	return h.create(c, TypeExpense, audit.ActionTransactionExpense)
}

func (h *Handler) CreateTransfer(c *fiber.Ctx) error {
	return h.create(c, TypeTransfer, audit.ActionTransactionTransfer)
}

func (h *Handler) create(c *fiber.Ctx, txType, action string) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body createTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}

	amount, err := money.ParsePositiveAmount(body.Amount)
	if err != nil {
		return err
	}
	date, err := parseDate(body.Date)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	t := &Transaction{
		UserID:               userID,
		Type:                 txType,
		Amount:               amount,
		Date:                 date,
		Description:          body.Description,
		CategoryID:           body.CategoryID,
		SourceAccountID:      normalizeRef(body.SourceAccountID),
		DestinationAccountID: normalizeRef(body.DestinationAccountID),
	}

	if err := h.validateRefs(ctx, t); err != nil {
		return err
	}
	if err := h.Repo.Create(ctx, t); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      action,
		EntityType:  "TRANSACTION",
		EntityID:    t.ID,
		Description: txType + " transaction recorded",
		Details:     fiber.Map{"transaction_id": t.ID, "type": txType, "amount": t.AmountString()},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(t)
}

func normalizeRef(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// validateRefs checks ownership of every referenced account and the
// visibility and type of the category before any balance is touched.
// Transfers never carry a category of their own; income and expense may.
func (h *Handler) validateRefs(ctx context.Context, t *Transaction) error {
	if t.SourceAccountID != nil {
		if _, err := h.Accounts.GetOwned(ctx, *t.SourceAccountID, t.UserID); err != nil {
			return err
		}
	}
	if t.DestinationAccountID != nil {
		if _, err := h.Accounts.GetOwned(ctx, *t.DestinationAccountID, t.UserID); err != nil {
			return err
		}
	}
	if t.CategoryID != nil && *t.CategoryID != "" {
		if t.Type == TypeTransfer {
			return apperr.Validation("transfers cannot have a category")
		}
		if _, err := h.Categories.GetTyped(ctx, *t.CategoryID, t.UserID, t.Type); err != nil {
			return err
		}
	} else {
		t.CategoryID = nil
		if t.Type != TypeTransfer {
			return apperr.Validation("category_id is required")
		}
	}
	return nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	f := Filter{
		AccountID:  c.Query("account_id"),
		Type:       c.Query("type"),
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
		SortBy:     c.Query("sort_by", "transaction_date"),
		SortOrder:  c.Query("sort_order", "desc"),
	}
	if f.Type != "" && f.Type != TypeIncome && f.Type != TypeExpense && f.Type != TypeTransfer {
		return apperr.Validation("type must be INCOME, EXPENSE or TRANSFER")
	}
	if s := c.Query("start_date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return err
		}
		f.StartDate = &d
	}
	if s := c.Query("end_date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return err
		}
		f.EndDate = &d
	}

	items, meta, err := h.Repo.List(c.UserContext(), userID, f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items, "meta": meta})
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
	t, err := h.Repo.GetOwned(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

type updateTransactionRequest struct {
	Description *string `json:"description"`
	Date        *string `json:"transaction_date"`
	CategoryID  *string `json:"category_id"`

	Amount               *string `json:"amount"`
	Type                 *string `json:"transaction_type"`
	SourceAccountID      *string `json:"source_account_id"`
	DestinationAccountID *string `json:"destination_account_id"`
}

// Update edits the descriptive subset of a transaction. Amount, type and
// account references are immutable; correcting those means delete and
// re-create so the balance trail stays honest.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body updateTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if body.Amount != nil || body.Type != nil || body.SourceAccountID != nil || body.DestinationAccountID != nil {
		return apperr.Validation("amount, type and accounts cannot be changed; delete and re-create the transaction")
	}

	ctx := c.UserContext()
	t, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if body.Description != nil {
		t.Description = body.Description
	}
	if body.Date != nil {
		d, err := parseDate(*body.Date)
		if err != nil {
			return err
		}
		t.Date = d
	}
	if body.CategoryID != nil {
		if *body.CategoryID == "" {
			if t.Type != TypeTransfer {
				return apperr.Validation("category_id is required for %s transactions", t.Type)
			}
			t.CategoryID = nil
		} else {
			if t.Type == TypeTransfer {
				return apperr.Validation("transfers cannot have a category")
			}
			if _, err := h.Categories.GetTyped(ctx, *body.CategoryID, userID, t.Type); err != nil {
				return err
			}
			t.CategoryID = body.CategoryID
		}
	}

	if err := h.Repo.UpdateFields(ctx, t); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionTransactionUpdate,
		EntityType:  "TRANSACTION",
		EntityID:    id,
		Description: "Transaction updated",
		Details:     fiber.Map{"transaction_id": id},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	t, err = h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	t, err := h.Repo.Delete(c.UserContext(), id, userID)
	if err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionTransactionDelete,
		EntityType:  "TRANSACTION",
		EntityID:    id,
		Description: "Transaction deleted and balances reversed",
		Details:     fiber.Map{"transaction_id": id, "type": t.Type, "amount": t.AmountString()},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "transaction deleted successfully"})
}

func parseID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("invalid transaction id")
	}
	return id, nil
}
