package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casaluna/guesthouse-backend/api/controllers"
	"github.com/casaluna/guesthouse-backend/api/middleware"
	"github.com/casaluna/guesthouse-backend/internal/activities"
	"github.com/casaluna/guesthouse-backend/internal/auth"
	"github.com/casaluna/guesthouse-backend/internal/bookings"
	"github.com/casaluna/guesthouse-backend/internal/expenses"
	"github.com/casaluna/guesthouse-backend/internal/incomes"
	"github.com/casaluna/guesthouse-backend/internal/ledger"
	"github.com/casaluna/guesthouse-backend/pkg/config"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
	"github.com/casaluna/guesthouse-backend/pkg/metrics"
)

// Deps bundles everything the router needs. Pingers feed the readiness
// endpoint; nil entries are skipped.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *metrics.HTTPMetrics
	RateLimiter middleware.RateLimiterStore
	Pingers     map[string]controllers.Pinger

	AuthService    auth.Service
	LedgerService  ledger.Service
	IncomeService  incomes.Service
	ExpenseService expenses.Service
	BookingService bookings.Service
	ActivityRepo   activities.Repository
}

// NewRouter assembles the HTTP surface of the ledger backend.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
		middleware.Logging(logg, d.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).
			Post("/login", controllers.AuthLogin(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/balance", controllers.LedgerBalance(d.LedgerService, logg))
			r.Get("/totals", controllers.LedgerTotals(d.LedgerService, logg))
			r.Get("/closes/last", controllers.LedgerLastClose(d.LedgerService, logg))
			r.With(middleware.RequireLedgerManager(logg)).
				Post("/closes", controllers.LedgerClosePeriod(d.LedgerService, logg))
		})

		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", controllers.IncomeList(d.IncomeService, logg))
			r.Post("/", controllers.IncomeCreate(d.IncomeService, logg))
			r.Get("/{incomeId}", controllers.IncomeDetail(d.IncomeService, logg))
			r.Put("/{incomeId}", controllers.IncomeUpdate(d.IncomeService, logg))
			r.With(middleware.RequireLedgerManager(logg)).
				Delete("/{incomeId}", controllers.IncomeDelete(d.IncomeService, logg))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", controllers.ExpenseList(d.ExpenseService, logg))
			r.Post("/", controllers.ExpenseCreate(d.ExpenseService, logg))
			r.Get("/{expenseId}", controllers.ExpenseDetail(d.ExpenseService, logg))
			r.Put("/{expenseId}", controllers.ExpenseUpdate(d.ExpenseService, logg))
			r.With(middleware.RequireLedgerManager(logg)).
				Delete("/{expenseId}", controllers.ExpenseDelete(d.ExpenseService, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingList(d.BookingService, logg))
			r.Post("/", controllers.BookingCreate(d.BookingService, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(d.BookingService, logg))
			r.Put("/{bookingId}", controllers.BookingUpdate(d.BookingService, logg))
			r.Get("/{bookingId}/activities", controllers.BookingActivities(d.ActivityRepo, logg))
		})
	})

	return r
}
