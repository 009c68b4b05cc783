package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/saldo-pay/saldo_pay/internal/auth"
	"github.com/saldo-pay/saldo_pay/internal/config"
	"github.com/saldo-pay/saldo_pay/internal/customer"
	"github.com/saldo-pay/saldo_pay/internal/idempotency"
	"github.com/saldo-pay/saldo_pay/internal/middleware"
	"github.com/saldo-pay/saldo_pay/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database or cache (dev mode only) it falls back to in-memory stores.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		customerRepo customer.Repository
		txRepo       transaction.Repository
		wallets      transaction.WalletAccessor
	)
	if d.DB != nil {
		pgCustomers := customer.NewPostgresRepository(d.DB)
		customerRepo = pgCustomers
		wallets = pgCustomers
		txRepo = transaction.NewPostgresRepository(d.DB)
	} else {
		memCustomers := customer.NewMemoryRepository()
		customerRepo = memCustomers
		wallets = memCustomers
		txRepo = transaction.NewMemoryRepository(memCustomers)
	}

	var idemStore idempotency.Store
	if d.Cache != nil {
		idemStore = idempotency.NewRedisStore(d.Cache)
	} else {
		idemStore = idempotency.NewNoopStore()
	}

	customerSvc := customer.NewService(customerRepo)
	txSvc := transaction.NewService(txRepo, wallets, idemStore, d.Cfg.IdempotencyTTL, d.Logger)
	authSvc := auth.NewService(customerSvc, customerRepo, d.Cache, d.Cfg.SessionTTL)

	customerHandler := customer.NewHandler(customerSvc)
	txHandler := transaction.NewHandler(txSvc)
	authHandler := auth.NewHandler(authSvc)

	api := app.Group("/api/v1")

	// Public surface
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, 5))
	api.Post("/customers", customerHandler.Create)

	// Protected surface
	protected := api.Group("", middleware.SessionGuard(authSvc))
	RegisterCustomerRoutes(protected, customerHandler, txHandler)
	RegisterTransactionRoutes(protected, txHandler)

	return nil
}
