package reports

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/transactions"
)

type Handler struct {
	Repo     *Repo
	Accounts *accounts.Repo
	Cache    *Cache
}

func NewHandler(repo *Repo, accts *accounts.Repo, cache *Cache) *Handler {
	return &Handler{Repo: repo, Accounts: accts, Cache: cache}
}

// requirePremium gates report endpoints behind a paid plan.
func (h *Handler) requirePremium(c *fiber.Ctx, userID string) error {
	plan, err := h.Accounts.PlanOf(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if plan == "FREE" {
		return apperr.Permission("reports require a premium subscription")
	}
	return nil
}

// rangeQuery reads start_date/end_date, defaulting to the current calendar
// month. The end bound is exclusive.
func rangeQuery(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	if s := c.Query("start_date"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		start = d
	}
	if s := c.Query("end_date"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		end = d.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, apperr.Validation("end_date must not be before start_date")
	}
	return start, end, nil
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.requirePremium(c, userID); err != nil {
		return err
	}
	start, end, err := rangeQuery(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	key := fmt.Sprintf("report:summary:%s:%s:%s", userID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	var s Summary
	if h.Cache.Get(ctx, key, &s) {
		return c.JSON(&s)
	}

	summary, err := h.Repo.Summary(ctx, userID, start, end)
	if err != nil {
		return err
	}
	h.Cache.Set(ctx, key, summary)
	return c.JSON(summary)
}

func (h *Handler) ByCategory(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.requirePremium(c, userID); err != nil {
		return err
	}

	txType := c.Query("type", transactions.TypeExpense)
	if txType != transactions.TypeIncome && txType != transactions.TypeExpense {
		return apperr.Validation("type must be INCOME or EXPENSE")
	}
	start, end, err := rangeQuery(c)
	if err != nil {
		return err
	}

	slices, err := h.Repo.ByCategory(c.UserContext(), userID, txType, start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slices, "type": txType})
}

func (h *Handler) Trend(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	if err := h.requirePremium(c, userID); err != nil {
		return err
	}

	granularity := c.Query("granularity", "month")
	if granularity != "day" && granularity != "month" {
		return apperr.Validation("granularity must be day or month")
	}
	start, end, err := rangeQuery(c)
	if err != nil {
		return err
	}

	points, err := h.Repo.Trend(c.UserContext(), userID, granularity, start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": points, "granularity": granularity})
}
