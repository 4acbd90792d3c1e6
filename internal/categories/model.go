package categories

import (
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

type Category struct {
	ID         string     `json:"id"`
	UserID     *string    `json:"user_id"` // nil = global category
	Name       string     `json:"category_name"`
	Type       string     `json:"category_type"`
	ParentID   *string    `json:"parent_category_id"`
	ParentName *string    `json:"parent_category_name,omitempty"`
	Icon       *string    `json:"icon"`
	Color      *string    `json:"color"`
	CreatedAt  time.Time  `json:"created_at"`
	Children   []Category `json:"sub_categories,omitempty"`
}

// IsGlobal reports whether the category is a system-wide default.
func (c *Category) IsGlobal() bool { return c.UserID == nil }

// validateParent enforces the two-level tree: the parent must be top-level
// and type-matched, and a category that already has children of its own can
// never be nested under a parent.
func validateParent(parent *Category, childType string, childHasChildren bool) error {
	if parent.Type != childType {
		return apperr.Validation("child category type must be %s", parent.Type)
	}
	if parent.ParentID != nil {
		return apperr.Validation("categories can only nest one level deep")
	}
	if childHasChildren {
		return apperr.Validation("category with sub-categories cannot be nested under a parent")
	}
	return nil
}
