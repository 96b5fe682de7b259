package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/directsales-backend/api/controllers"
	"github.com/angelmondragon/directsales-backend/api/middleware"
	"github.com/angelmondragon/directsales-backend/internal/auth"
	"github.com/angelmondragon/directsales-backend/internal/catalog"
	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/internal/subscriptions"
	"github.com/angelmondragon/directsales-backend/pkg/auth/session"
	"github.com/angelmondragon/directsales-backend/pkg/config"
	"github.com/angelmondragon/directsales-backend/pkg/enums"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/metrics"
	"github.com/angelmondragon/directsales-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// redisStore is the slice of the Redis client the HTTP layer uses.
type redisStore interface {
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         redisStore
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
	Sessions      sessionManager
	Auth          auth.Service
	Catalog       catalog.Service
	Inventory     inventory.Service
	Clients       clients.Service
	Sales         sales.Service
	Subscriptions subscriptions.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessChecks(deps), logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Get("/subscription", controllers.MySubscription(deps.Subscriptions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActiveSubscription(deps.Subscriptions, logg))
			r.Use(middleware.Idempotency(deps.Redis, cfg.Sales.IdempotencyTTL, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Catalog, logg))
				r.Get("/{productId}", controllers.GetProduct(deps.Catalog, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.ListInventory(deps.Inventory, logg))
				r.Get("/low-stock", controllers.ListLowStock(deps.Inventory, logg))
				r.Put("/{productId}", controllers.RestockInventory(deps.Inventory, logg))
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", controllers.ListClients(deps.Clients, logg))
				r.Post("/", controllers.CreateClient(deps.Clients, logg))
				r.Get("/{clientId}", controllers.GetClient(deps.Clients, logg))
			})

			r.Route("/sales", func(r chi.Router) {
				r.Post("/", controllers.RecordSale(deps.Sales, logg))
				r.Get("/", controllers.ListSales(deps.Sales, logg))
				r.Get("/{saleId}", controllers.GetSale(deps.Sales, logg))
				r.Post("/{saleId}/mark-paid", controllers.MarkSalePaid(deps.Sales, logg))
				r.Post("/{saleId}/inventory/retry", controllers.RetrySaleInventory(deps.Sales, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(deps.Redis, cfg.Sales.IdempotencyTTL, logg))

		r.Post("/products", controllers.AdminCreateProduct(deps.Catalog, logg))
		r.Patch("/products/{productId}/price", controllers.AdminUpdateProductPrice(deps.Catalog, logg))
		r.Get("/sales/orphaned", controllers.AdminListOrphanedSales(deps.Sales, logg))
		r.Put("/consultants/{consultantId}/subscription", controllers.AdminSetSubscription(deps.Subscriptions, logg))
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}

