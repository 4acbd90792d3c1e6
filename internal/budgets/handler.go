package budgets

import (
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

// freePlanBudgetLimit caps how many budgets a FREE user may keep.
const freePlanBudgetLimit = 10

type Handler struct {
	Repo       *Repo
	Accounts   *accounts.Repo
	Categories *categories.Repo
	DB         *pgxpool.Pool
}

func NewHandler(repo *Repo, accts *accounts.Repo, cats *categories.Repo, db *pgxpool.Pool) *Handler {
	return &Handler{Repo: repo, Accounts: accts, Categories: cats, DB: db}
}

type createBudgetRequest struct {
	CategoryID  string  `json:"category_id"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Amount      string  `json:"amount"`
	Description *string `json:"description"`
}

func validMonth(year, month int) error {
	if year < 2000 || year > 2100 {
		return apperr.Validation("year out of range")
	}
	if month < 1 || month > 12 {
		return apperr.Validation("month must be between 1 and 12")
	}
	return nil
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body createBudgetRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if err := validMonth(body.Year, body.Month); err != nil {
		return err
	}
	amount, err := money.ParsePositiveAmount(body.Amount)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	plan, err := h.Accounts.PlanOf(ctx, userID)
	if err != nil {
		return err
	}
	if plan == "FREE" {
		n, err := h.Repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n >= freePlanBudgetLimit {
			return apperr.Permission("free plan allows up to %d budgets; upgrade to add more", freePlanBudgetLimit)
		}
	}

	// Budgets track spending, so only expense categories qualify.
	if _, err := h.Categories.GetTyped(ctx, body.CategoryID, userID, categories.TypeExpense); err != nil {
		return err
	}

	b := &Budget{
		UserID:      userID,
		CategoryID:  body.CategoryID,
		Year:        body.Year,
		Month:       body.Month,
		Amount:      amount,
		Description: normalizeDescription(body.Description),
	}
	if err := h.Repo.Insert(ctx, b); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionBudgetCreate,
		EntityType:  "BUDGET",
		EntityID:    b.ID,
		Description: "Budget created",
		Details:     fiber.Map{"budget_id": b.ID, "year": b.Year, "month": b.Month, "amount": b.AmountString()},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(b)
}

// monthQuery reads year/month from the query string, defaulting to the
// current calendar month.
func monthQuery(c *fiber.Ctx) (int, int, error) {
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if err := validMonth(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	year, month, err := monthQuery(c)
	if err != nil {
		return err
	}
	items, err := h.Repo.ListByMonth(c.UserContext(), userID, year, month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Report joins the month's budgets with actual expense spending.
func (h *Handler) Report(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	year, month, err := monthQuery(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	items, err := h.Repo.ListByMonth(ctx, userID, year, month)
	if err != nil {
		return err
	}
	spent, err := h.Repo.SpentByCategory(ctx, userID, year, month)
	if err != nil {
		return err
	}

	reports := make([]Report, 0, len(items))
	for _, b := range items {
		s := spent[b.CategoryID]
		remaining, pct := usage(b.Amount, s)
		reports = append(reports, Report{Budget: b, Spent: s, Remaining: remaining, Percentage: pct})
	}
	return c.JSON(fiber.Map{"data": reports, "year": year, "month": month})
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
	b, err := h.Repo.GetOwned(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

type updateBudgetRequest struct {
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body updateBudgetRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}

	ctx := c.UserContext()
	b, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if body.Amount != nil {
		amount, err := money.ParsePositiveAmount(*body.Amount)
		if err != nil {
			return err
		}
		b.Amount = amount
	}
	if body.Description != nil {
		b.Description = normalizeDescription(body.Description)
	}

	if err := h.Repo.Update(ctx, b); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionBudgetUpdate,
		EntityType:  "BUDGET",
		EntityID:    id,
		Description: "Budget updated",
		Details:     fiber.Map{"budget_id": id, "amount": b.AmountString()},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(b)
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
	if err := h.Repo.Delete(c.UserContext(), id, userID); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionBudgetDelete,
		EntityType:  "BUDGET",
		EntityID:    id,
		Description: "Budget deleted",
		Details:     fiber.Map{"budget_id": id},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "budget deleted successfully"})
}

func parseID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("invalid budget id")
	}
	return id, nil
}
