package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/apperr"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/auth"
	"github.com/firmanasgani/my-wallets-api/internal/banks"
	"github.com/firmanasgani/my-wallets-api/internal/billing"
	"github.com/firmanasgani/my-wallets-api/internal/budgets"
	"github.com/firmanasgani/my-wallets-api/internal/categories"
	apphttp "github.com/firmanasgani/my-wallets-api/internal/http"
	"github.com/firmanasgani/my-wallets-api/internal/recurring"
	"github.com/firmanasgani/my-wallets-api/internal/reports"
	"github.com/firmanasgani/my-wallets-api/internal/router"
	"github.com/firmanasgani/my-wallets-api/internal/transactions"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	if strings.TrimSpace(os.Getenv("JWT_SECRET")) == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		slog.Error("creating pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		slog.Error("pinging database", "error", err)
		os.Exit(1)
	}

	cache := reports.NewCache(ctx, os.Getenv("REDIS_URL"))
	defer cache.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	bankRepo := banks.NewRepo(pool)
	accountRepo := accounts.NewRepo(pool)
	categoryRepo := categories.NewRepo(pool)
	txnRepo := transactions.NewRepo(pool)
	recurringRepo := recurring.NewRepo(pool)
	budgetRepo := budgets.NewRepo(pool)
	reportRepo := reports.NewRepo(pool)
	billingStore := billing.NewStore(pool)
	midtransClient := billing.NewClient()

	recurringService := recurring.NewService(pool, recurringRepo, accountRepo, categoryRepo)

	r := &router.Router{
		AuthHandler:        &apphttp.AuthHandler{DB: pool},
		BankHandler:        banks.NewHandler(bankRepo),
		AccountHandler:     accounts.NewHandler(accountRepo, bankRepo, pool),
		CategoryHandler:    categories.NewHandler(categoryRepo, pool),
		TransactionHandler: transactions.NewHandler(txnRepo, accountRepo, categoryRepo, pool),
		RecurringHandler:   recurring.NewHandler(recurringService, pool),
		BudgetHandler:      budgets.NewHandler(budgetRepo, accountRepo, categoryRepo, pool),
		ReportHandler:      reports.NewHandler(reportRepo, accountRepo, cache),
		BillingHandler:     billing.NewHandler(billingStore, midtransClient, pool),
		AuditHandler:       audit.NewHandler(pool),
		AuthMW:             auth.Middleware(pool),
	}
	app.Use("/api/transactions", rateLimitTransactions())
	r.RegisterRoutes(app)

	go recurring.NewScheduler(recurringService).Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	slog.Info("listening", "port", port)
	if err := app.Listen(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// errorHandler maps application errors to HTTP responses. Unknown errors
// log with detail and return an opaque 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	code, message := apperr.Status(err)
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String())
		return err
	}
}

func rateLimitTransactions() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	})
}
