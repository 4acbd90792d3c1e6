package auth

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Secret returns the JWT signing key. The server refuses to start without it;
// see cmd/api.
func Secret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken issues a 24h HS256 token for the given user.
func GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(Secret())
}

// UserID returns the authenticated caller's id set by Middleware.
func UserID(c *fiber.Ctx) (string, error) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
}

// Middleware validates the Bearer token and stores the caller id in Locals.
func Middleware(pool *pgxpool.Pool) fiber.Handler {
	secret := Secret()

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		rawUID, ok := claims["user_id"].(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if _, err := uuid.Parse(rawUID); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", rawUID)

		// Update last_seen_at (best-effort, do not block request)
		go func(uid string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = pool.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1::uuid`, uid)
		}(rawUID)

		return c.Next()
	}
}
