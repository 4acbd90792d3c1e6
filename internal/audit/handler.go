package audit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/auth"
)

type Log struct {
	ID          int64     `json:"id"`
	ActionType  string    `json:"action_type"`
	EntityType  *string   `json:"entity_type"`
	EntityID    *string   `json:"entity_id"`
	Description *string   `json:"description"`
	IPAddress   *string   `json:"ip_address"`
	UserAgent   *string   `json:"user_agent"`
	CreatedAt   time.Time `json:"created_at"`
}

type Handler struct {
	DB *pgxpool.Pool
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{DB: db}
}

// ListMine returns the caller's audit trail, newest first.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	action := c.Query("action_type")

	ctx := c.UserContext()

	where := `WHERE user_id = $1`
	args := []any{userID}
	if action != "" {
		where += ` AND action_type = $2`
		args = append(args, action)
	}

	var total int64
	if err := h.DB.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs `+where, args...).Scan(&total); err != nil {
		return err
	}

	query := `
SELECT id, action_type, entity_type, entity_id, description, ip_address, user_agent, created_at
FROM audit_logs ` + where + `
ORDER BY created_at DESC
LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa((page-1)*limit)

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	out := make([]Log, 0, limit)
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.ActionType, &l.EntityType, &l.EntityID, &l.Description, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	lastPage := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"data": out,
		"meta": fiber.Map{"total": total, "page": page, "limit": limit, "last_page": lastPage},
	})
}
