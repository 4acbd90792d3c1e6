// Package banks exposes the seeded bank directory used when opening
// BANK-type accounts.
package banks

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Bank struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) List(ctx context.Context) ([]Bank, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, code, name FROM banks ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Bank, 0)
	for rows.Next() {
		var b Bank
		if err := rows.Scan(&b.ID, &b.Code, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Exists reports whether a bank id is present in the directory.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM banks WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.Repo.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}
