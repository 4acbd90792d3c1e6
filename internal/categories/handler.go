package categories

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
)

type Handler struct {
	Repo *Repo
	DB   *pgxpool.Pool
}

func NewHandler(repo *Repo, db *pgxpool.Pool) *Handler {
	return &Handler{Repo: repo, DB: db}
}

type createCategoryRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id"`
	Icon     *string `json:"icon"`
	Color    *string `json:"color"`
}

type updateCategoryRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	ParentID *string `json:"parent_id"`
	Icon     *string `json:"icon"`
	Color    *string `json:"color"`
}

func validType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var body createCategoryRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if body.Name == "" {
		return apperr.Validation("name is required")
	}
	if !validType(body.Type) {
		return apperr.Validation("type must be INCOME or EXPENSE")
	}

	ctx := c.UserContext()

	if body.ParentID != nil && *body.ParentID != "" {
		parent, err := h.Repo.Get(ctx, *body.ParentID, userID)
		if err != nil {
			return err
		}
		if err := validateParent(parent, body.Type, false); err != nil {
			return err
		}
	} else {
		body.ParentID = nil
	}

	dup, err := h.Repo.Duplicate(ctx, userID, body.Name, body.Type, body.ParentID, "")
	if err != nil {
		return err
	}
	if dup {
		return apperr.Conflict("category already exists")
	}

	cat := &Category{
		UserID:   &userID,
		Name:     body.Name,
		Type:     body.Type,
		ParentID: body.ParentID,
		Icon:     body.Icon,
		Color:    body.Color,
	}
	if err := h.Repo.Insert(ctx, cat); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCategoryCreate,
		EntityType:  "CATEGORY",
		EntityID:    cat.ID,
		Description: "Category " + cat.Name + " created",
		Details:     fiber.Map{"category_id": cat.ID, "type": cat.Type},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	f := ListFilter{
		Type:          c.Query("type"),
		Hierarchical:  c.QueryBool("hierarchical", false),
		ParentID:      c.Query("parent_id"),
		IncludeGlobal: c.QueryBool("include_global", true),
	}
	if f.Type != "" && !validType(f.Type) {
		return apperr.Validation("type must be INCOME or EXPENSE")
	}
	if f.Hierarchical && f.ParentID != "" {
		return apperr.Validation("cannot use parent_id when hierarchical is true")
	}

	items, err := h.Repo.List(c.UserContext(), userID, f)
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
	cat, err := h.Repo.Get(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	children, err := h.Repo.List(c.UserContext(), userID, ListFilter{ParentID: cat.ID, IncludeGlobal: true})
	if err != nil {
		return err
	}
	cat.Children = children
	return c.JSON(cat)
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

	var body updateCategoryRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}

	ctx := c.UserContext()
	cat, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if body.Name != nil {
		if *body.Name == "" {
			return apperr.Validation("name cannot be empty")
		}
		cat.Name = *body.Name
	}
	if body.Type != nil {
		if !validType(*body.Type) {
			return apperr.Validation("type must be INCOME or EXPENSE")
		}
		cat.Type = *body.Type
	}
	if body.ParentID != nil {
		if *body.ParentID == "" {
			cat.ParentID = nil
		} else {
			if *body.ParentID == id {
				return apperr.Validation("parent_id cannot be the category itself")
			}
			cat.ParentID = body.ParentID
		}
	}
	if body.Icon != nil {
		cat.Icon = body.Icon
	}
	if body.Color != nil {
		cat.Color = body.Color
	}

	if cat.ParentID != nil {
		parent, err := h.Repo.Get(ctx, *cat.ParentID, userID)
		if err != nil {
			return err
		}
		hasChildren, err := h.Repo.HasChildren(ctx, id)
		if err != nil {
			return err
		}
		if err := validateParent(parent, cat.Type, hasChildren); err != nil {
			return err
		}
	}

	dup, err := h.Repo.Duplicate(ctx, userID, cat.Name, cat.Type, cat.ParentID, id)
	if err != nil {
		return err
	}
	if dup {
		return apperr.Conflict("category already exists")
	}

	if err := h.Repo.Update(ctx, cat); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCategoryUpdate,
		EntityType:  "CATEGORY",
		EntityID:    id,
		Description: "Category updated",
		Details:     fiber.Map{"category_id": id},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(cat)
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
	cat, err := h.Repo.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := h.Repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	audit.Record(h.DB, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCategoryDelete,
		EntityType:  "CATEGORY",
		EntityID:    id,
		Description: "Category deleted",
		Details:     fiber.Map{"category_id": id, "name": cat.Name},
		IP:          c.IP(),
		UserAgent:   c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"message": "category deleted successfully"})
}

func parseID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("invalid category id")
	}
	return id, nil
}
