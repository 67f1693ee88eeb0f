package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/payroll_escrow/internal/config"
	"github.com/congo-pay/payroll_escrow/internal/funding"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
	"github.com/congo-pay/payroll_escrow/internal/middleware"
	"github.com/congo-pay/payroll_escrow/internal/notification"
	"github.com/congo-pay/payroll_escrow/internal/payments"
	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Payout overrides the funding payout connector. Nil uses funding.StaticPayout.
	Payout funding.Payout
}

// Setup configures middlewares and all application routes. Without a
// database the service runs on the in-memory ledger, which is only accepted
// in development.
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
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		ledgerBackend ledger.Ledger
		walletRepo    wallet.Repository
	)
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
		walletRepo = wallet.NewMemoryRepository()
	}

	walletSvc := wallet.NewService(walletRepo, ledgerBackend)
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(ledgerBackend, walletSvc, notifier)
	fundingSvc, err := funding.NewService(ledgerBackend, walletSvc, d.Payout, notifier)
	if err != nil {
		return err
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDKey).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	limiter := middleware.NewFailureLimiter(d.Cache, d.Cfg.AuthFailuresPerMin)
	protected := api.Group("",
		middleware.OperatorAuth(d.Cfg.OperatorKeyHash, limiter),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)
	RegisterWalletRoutes(protected, wallet.NewHandler(walletSvc))
	RegisterOwnerRoutes(protected, walletSvc)
	RegisterFundingRoutes(protected, funding.NewHandler(fundingSvc))
	RegisterPaymentRoutes(protected, payments.NewHandler(paymentSvc))

	return nil
}
