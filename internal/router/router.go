package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/firmanasgani/my-wallets-api/internal/accounts"
	"github.com/firmanasgani/my-wallets-api/internal/audit"
	"github.com/firmanasgani/my-wallets-api/internal/banks"
	"github.com/firmanasgani/my-wallets-api/internal/billing"
	"github.com/firmanasgani/my-wallets-api/internal/budgets"
	"github.com/firmanasgani/my-wallets-api/internal/categories"
	handlers "github.com/firmanasgani/my-wallets-api/internal/http"
	"github.com/firmanasgani/my-wallets-api/internal/recurring"
	"github.com/firmanasgani/my-wallets-api/internal/reports"
	"github.com/firmanasgani/my-wallets-api/internal/transactions"
)

type Router struct {
	AuthHandler        *handlers.AuthHandler
	BankHandler        *banks.Handler
	AccountHandler     *accounts.Handler
	CategoryHandler    *categories.Handler
	TransactionHandler *transactions.Handler
	RecurringHandler   *recurring.Handler
	BudgetHandler      *budgets.Handler
	ReportHandler      *reports.Handler
	BillingHandler     *billing.Handler
	AuditHandler       *audit.Handler
	AuthMW             fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Post("/api/auth/signup", r.AuthHandler.Signup)
	app.Post("/api/auth/login", r.AuthHandler.Login)
	app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)

	app.Get("/api/banks", r.AuthMW, r.BankHandler.List)

	app.Post("/api/accounts", r.AuthMW, r.AccountHandler.Create)
	app.Get("/api/accounts", r.AuthMW, r.AccountHandler.List)
	app.Get("/api/accounts/:id", r.AuthMW, r.AccountHandler.Get)
	app.Patch("/api/accounts/:id", r.AuthMW, r.AccountHandler.Update)
	app.Delete("/api/accounts/:id", r.AuthMW, r.AccountHandler.Delete)

	app.Post("/api/categories", r.AuthMW, r.CategoryHandler.Create)
	app.Get("/api/categories", r.AuthMW, r.CategoryHandler.List)
	app.Get("/api/categories/:id", r.AuthMW, r.CategoryHandler.Get)
	app.Patch("/api/categories/:id", r.AuthMW, r.CategoryHandler.Update)
	app.Delete("/api/categories/:id", r.AuthMW, r.CategoryHandler.Delete)

	app.Post("/api/transactions/income", r.AuthMW, r.TransactionHandler.CreateIncome)
	app.Post("/api/transactions/expense", r.AuthMW, r.TransactionHandler.CreateExpense)
	app.Post("/api/transactions/transfer", r.AuthMW, r.TransactionHandler.CreateTransfer)
	app.Get("/api/transactions", r.AuthMW, r.TransactionHandler.List)
	app.Get("/api/transactions/:id", r.AuthMW, r.TransactionHandler.Get)
	app.Patch("/api/transactions/:id", r.AuthMW, r.TransactionHandler.Update)
	app.Delete("/api/transactions/:id", r.AuthMW, r.TransactionHandler.Delete)

	app.Post("/api/recurring-transactions", r.AuthMW, r.RecurringHandler.Create)
	app.Get("/api/recurring-transactions", r.AuthMW, r.RecurringHandler.List)
	app.Get("/api/recurring-transactions/:id", r.AuthMW, r.RecurringHandler.Get)
	app.Delete("/api/recurring-transactions/:id", r.AuthMW, r.RecurringHandler.Delete)

	app.Post("/api/budgets", r.AuthMW, r.BudgetHandler.Create)
	app.Get("/api/budgets", r.AuthMW, r.BudgetHandler.List)
	app.Get("/api/budgets/report", r.AuthMW, r.BudgetHandler.Report)
	app.Get("/api/budgets/:id", r.AuthMW, r.BudgetHandler.Get)
	app.Patch("/api/budgets/:id", r.AuthMW, r.BudgetHandler.Update)
	app.Delete("/api/budgets/:id", r.AuthMW, r.BudgetHandler.Delete)

	app.Get("/api/reports/summary", r.AuthMW, r.ReportHandler.Summary)
	app.Get("/api/reports/by-category", r.AuthMW, r.ReportHandler.ByCategory)
	app.Get("/api/reports/trend", r.AuthMW, r.ReportHandler.Trend)

	app.Get("/api/subscriptions/plans", r.BillingHandler.Plans)
	app.Get("/api/subscriptions/me", r.AuthMW, r.BillingHandler.MySubscription)
	app.Get("/api/subscriptions/payments", r.AuthMW, r.BillingHandler.Payments)
	app.Post("/api/subscriptions/checkout", r.AuthMW, r.BillingHandler.Checkout)
	app.Post("/api/subscriptions/webhook", r.BillingHandler.Webhook)

	app.Get("/api/audit-logs", r.AuthMW, r.AuditHandler.ListMine)
}
