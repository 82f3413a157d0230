package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/casaluna/guesthouse-backend/api/controllers"
	"github.com/casaluna/guesthouse-backend/api/routes"
	"github.com/casaluna/guesthouse-backend/internal/activities"
	"github.com/casaluna/guesthouse-backend/internal/auth"
	"github.com/casaluna/guesthouse-backend/internal/bookings"
	"github.com/casaluna/guesthouse-backend/internal/expenses"
	"github.com/casaluna/guesthouse-backend/internal/incomes"
	"github.com/casaluna/guesthouse-backend/internal/ledger"
	"github.com/casaluna/guesthouse-backend/internal/users"
	"github.com/casaluna/guesthouse-backend/pkg/config"
	"github.com/casaluna/guesthouse-backend/pkg/db"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
	"github.com/casaluna/guesthouse-backend/pkg/metrics"
	"github.com/casaluna/guesthouse-backend/pkg/migrate"
	"github.com/casaluna/guesthouse-backend/pkg/redis"
	"github.com/casaluna/guesthouse-backend/pkg/storage/receipts"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	// The receipts bucket is optional in development; without it expense
	// photo cleanup is skipped.
	var receiptStore expenses.ReceiptRemover
	if cfg.Receipts.Bucket != "" {
		receiptsClient, err := receipts.New(context.Background(), cfg.Receipts, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap receipts storage", err)
			os.Exit(1)
		}
		receiptStore = receiptsClient
		pingers["receipts"] = receiptsClient
	} else {
		logg.Warn(context.Background(), "no receipts bucket configured, photo cleanup disabled")
	}

	conn := dbClient.DB()
	incomeRepo := incomes.NewRepository(conn)
	expenseRepo := expenses.NewRepository(conn)
	closeRepo := ledger.NewRepository(conn)
	bookingRepo := bookings.NewRepository(conn)
	activityRepo := activities.NewRepository(conn)

	ledgerService, err := ledger.NewService(dbClient, closeRepo, incomeRepo, expenseRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	incomeService, err := incomes.NewService(dbClient, incomeRepo, bookingRepo, activityRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create income service", err)
		os.Exit(1)
	}
	expenseService, err := expenses.NewService(dbClient, expenseRepo, ledgerService, receiptStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expense service", err)
		os.Exit(1)
	}
	bookingService, err := bookings.NewService(bookingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(users.NewRepository(conn), cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Metrics:        metrics.NewHTTPMetrics("api"),
		RateLimiter:    redisClient,
		Pingers:        pingers,
		AuthService:    authService,
		LedgerService:  ledgerService,
		IncomeService:  incomeService,
		ExpenseService: expenseService,
		BookingService: bookingService,
		ActivityRepo:   activityRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
