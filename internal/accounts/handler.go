package accounts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/banks"
	"github.com/firmanasgani/my-wallets-api/internal/money"
)

// Free-plan account cap, matching the subscription tiers.
const freePlanAccountLimit = 4

type Handler struct {
	Repo  *Repo
	Banks *banks.Repo
	DB    *pgxpool.Pool
}

func NewHandler(repo *Repo, bankRepo *banks.Repo, db *pgxpool.Pool) *Handler {
	return &Handler{Repo: repo, Banks: bankRepo, DB: db}
}

type createAccountRequest struct {
	AccountName    string  `json:"account_name"`
	AccountType    string  `json:"account_type"`
	BankID         *string `json:"bank_id"`
	InitialBalance string  `json:"initial_balance"`
	Currency       string  `json:"currency"`
}

type updateAccountRequest struct {
	AccountName *string `json:"account_name"`
	AccountType *string `json:"account_type"`
	BankID      *string `json:"bank_id"`
	Currency    *string `json:"currency"`
}

func accountResponse(a *Account) fiber.Map {
	return fiber.Map{
		"id":                    a.ID,
		"account_name":          a.AccountName,
		"account_type":          a.AccountType,
		"bank_id":               a.BankID,
		"bank_name":             a.BankName,
		"initial_balance_cents": a.InitialBalance,
		"current_balance_cents": a.CurrentBalance,
		"current_balance":       a.Balance(),
		"initial_balance":       money.FormatCents(a.InitialBalance),
		"currency":              a.Currency,
		"created_at":            a.CreatedAt,
		"updated_at":            a.UpdatedAt,
	}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body createAccountRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if body.AccountName == "" {
		return apperr.Validation("account_name is required")
	}
	if err := validateBankRef(body.AccountType, body.BankID); err != nil {
		return err
	}

	ctx := c.UserContext()

	plan, err := h.Repo.PlanOf(ctx, userID)
	if err != nil {
		return err
	}
	if plan == "FREE" {
		n, err := h.Repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n >= freePlanAccountLimit {
			return apperr.Permission("free plan users are limited to %d accounts, please upgrade to create more", freePlanAccountLimit)
		}
	}

	if body.AccountType == TypeBank {
		ok, err := h.Banks.Exists(ctx, *body.BankID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("bank_id is invalid")
		}
	}

	initial := int64(0)
	if body.InitialBalance != "" {
		initial, err = money.ParseAmount(body.InitialBalance)
		if err != nil {
			return apperr.Validation("initial_balance must be a decimal with at most two places")
		}
	}
	currency := body.Currency
	if currency == "" {
		currency = "IDR"
	}

	a := &Account{
		UserID:         userID,
		AccountName:    body.AccountName,
		AccountType:    body.AccountType,
		BankID:         body.BankID,
		InitialBalance: initial,
		CurrentBalance: initial,
		Currency:       currency,
	}
	if err := h.Repo.Insert(ctx, a); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionAccountCreate,
		EntityType:  "ACCOUNT",
		EntityID:    a.ID,
		Description: "Created " + a.AccountName + " account",
		Details:     fiber.Map{"account_id": a.ID, "account_type": a.AccountType, "initial_balance_cents": a.InitialBalance},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(accountResponse(a))
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	items, err := h.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(items))
	for i := range items {
		out = append(out, accountResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
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
	a, err := h.Repo.GetOwned(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(accountResponse(a))
}

// Update changes name, type/bank pairing and currency. Balances are off
// limits here: they move only through the transaction ledger.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body updateAccountRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}

	ctx := c.UserContext()
	a, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if body.AccountName != nil {
		if *body.AccountName == "" {
			return apperr.Validation("account_name cannot be empty")
		}
		a.AccountName = *body.AccountName
	}
	if body.Currency != nil && *body.Currency != "" {
		a.Currency = *body.Currency
	}

	if body.AccountType != nil {
		a.AccountType = *body.AccountType
		a.BankID = body.BankID
	} else if body.BankID != nil {
		a.BankID = body.BankID
	}
	if err := validateBankRef(a.AccountType, a.BankID); err != nil {
		return err
	}
	if a.AccountType == TypeBank {
		ok, err := h.Banks.Exists(ctx, *a.BankID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("bank_id is invalid")
		}
	} else {
		a.BankID = nil
	}

	if err := h.Repo.UpdateMeta(ctx, a); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionAccountUpdate,
		EntityType:  "ACCOUNT",
		EntityID:    a.ID,
		Description: "Updated " + a.AccountName + " account",
		Details:     fiber.Map{"account_id": a.ID},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(accountResponse(a))
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

	ctx := c.UserContext()
	a, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := h.Repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionAccountDelete,
		EntityType:  "ACCOUNT",
		EntityID:    id,
		Description: "Deleted " + a.AccountName + " account",
		Details:     fiber.Map{"account_id": id, "deleted_account_name": a.AccountName},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "account " + a.AccountName + " has been deleted"})
}

func parseID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("invalid account id")
	}
	return id, nil
}
