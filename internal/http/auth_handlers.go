package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/firmanasgani/my-wallets-api/internal/auth"
)

type AuthHandler struct {
	DB *pgxpool.Pool
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var body signupRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	body.Username = strings.TrimSpace(body.Username)
	if body.Email == "" || body.Username == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email, username and password required")
	}
	if len(body.Password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	ctx := c.UserContext()

	var userID string
	err = h.DB.QueryRow(
		ctx,
		`INSERT INTO users (email, username, password_hash, full_name)
         VALUES ($1, $2, $3, NULLIF($4, ''))
         RETURNING id`,
		body.Email, body.Username, string(hashed), body.FullName,
	).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return fiber.NewError(fiber.StatusConflict, "username already exists")
			}
			return fiber.NewError(fiber.StatusConflict, "email already exists")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(authResponse{Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var (
		userID       string
		passwordHash string
	)

	ctx := c.UserContext()
	err := h.DB.QueryRow(
		ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`,
		strings.TrimSpace(strings.ToLower(body.Email)),
	).Scan(&userID, &passwordHash)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(authResponse{Token: token})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var (
		email, username, plan string
		fullName              *string
		createdAt             time.Time
	)
	err = h.DB.QueryRow(
		c.UserContext(),
		`SELECT email, username, full_name, subscription_plan, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&email, &username, &fullName, &plan, &createdAt)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{
		"id":                userID,
		"email":             email,
		"username":          username,
		"full_name":         fullName,
		"subscription_plan": plan,
		"created_at":        createdAt.Format(time.RFC3339),
	})
}
