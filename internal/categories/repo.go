package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const selectCategory = `
SELECT c.id, c.user_id, c.category_name, c.category_type, c.parent_category_id, p.category_name, c.icon, c.color, c.created_at
FROM categories c
LEFT JOIN categories p ON p.id = c.parent_category_id`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.ParentID, &c.ParentName, &c.Icon, &c.Color, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Insert(ctx context.Context, c *Category) error {
	return r.Pool.QueryRow(ctx, `
INSERT INTO categories (user_id, category_name, category_type, parent_category_id, icon, color)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`,
		c.UserID, c.Name, c.Type, c.ParentID, c.Icon, c.Color,
	).Scan(&c.ID, &c.CreatedAt)
}

// Get loads a category visible to the user: their own or a global one.
func (r *Repo) Get(ctx context.Context, id, userID string) (*Category, error) {
	c, err := scanCategory(r.Pool.QueryRow(ctx, selectCategory+`
WHERE c.id = $1 AND (c.user_id = $2 OR c.user_id IS NULL)`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Permission("category not found or access denied")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetTyped is Get plus a category-type check, the shape every ledger
// operation needs.
func (r *Repo) GetTyped(ctx context.Context, id, userID, wantType string) (*Category, error) {
	c, err := r.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c.Type != wantType {
		return nil, apperr.Validation("category %q is not an %s category", c.Name, wantType)
	}
	return c, nil
}

// GetOwned loads a category the user may mutate; global rows are read-only.
func (r *Repo) GetOwned(ctx context.Context, id, userID string) (*Category, error) {
	c, err := scanCategory(r.Pool.QueryRow(ctx, selectCategory+`
WHERE c.id = $1 AND c.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Permission("category not found or access denied")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type ListFilter struct {
	Type          string
	Hierarchical  bool
	ParentID      string
	IncludeGlobal bool
}

func (r *Repo) List(ctx context.Context, userID string, f ListFilter) ([]Category, error) {
	where := `WHERE (c.user_id = $1`
	if f.IncludeGlobal {
		where += ` OR c.user_id IS NULL`
	}
	where += `)`
	args := []any{userID}

	if f.Type != "" {
		args = append(args, f.Type)
		where += ` AND c.category_type = $2`
	}
	switch {
	case f.Hierarchical:
		where += ` AND c.parent_category_id IS NULL`
	case f.ParentID != "":
		args = append(args, f.ParentID)
		if f.Type != "" {
			where += ` AND c.parent_category_id = $3`
		} else {
			where += ` AND c.parent_category_id = $2`
		}
	}

	rows, err := r.Pool.Query(ctx, selectCategory+` `+where+` ORDER BY c.category_name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !f.Hierarchical {
		return out, nil
	}

	// Attach one level of children; the tree never nests deeper.
	for i := range out {
		children, err := r.List(ctx, userID, ListFilter{ParentID: out[i].ID, IncludeGlobal: f.IncludeGlobal})
		if err != nil {
			return nil, err
		}
		out[i].Children = children
	}
	return out, nil
}

// HasChildren reports whether any category points at this one as its parent.
func (r *Repo) HasChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_category_id = $1)`, id).Scan(&exists)
	return exists, err
}

// Duplicate reports whether the (name, type, parent, owner) tuple already
// exists, optionally excluding one id (for updates).
func (r *Repo) Duplicate(ctx context.Context, userID, name, catType string, parentID *string, excludeID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM categories
    WHERE category_name = $1 AND category_type = $2 AND user_id = $3
      AND parent_category_id IS NOT DISTINCT FROM $4
      AND id <> COALESCE(NULLIF($5, '')::uuid, '00000000-0000-0000-0000-000000000000'::uuid)
)`, name, catType, userID, parentID, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repo) Update(ctx context.Context, c *Category) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE categories SET category_name = $1, category_type = $2, parent_category_id = $3, icon = $4, color = $5
WHERE id = $6 AND user_id = $7`,
		c.Name, c.Type, c.ParentID, c.Icon, c.Color, c.ID, c.UserID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.Permission("category not found or access denied")
	}
	return nil
}

// Delete removes a category unless transactions still reference it.
func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	var refs int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Validation("category has related transactions")
	}

	ct, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.Permission("category not found or access denied")
	}
	return nil
}
