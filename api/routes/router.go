package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/atacado-catalog/api/controllers"
	"github.com/angelmondragon/atacado-catalog/api/middleware"
	"github.com/angelmondragon/atacado-catalog/internal/auth"
	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/internal/categories"
	product "github.com/angelmondragon/atacado-catalog/internal/products"
	"github.com/angelmondragon/atacado-catalog/internal/references"
	"github.com/angelmondragon/atacado-catalog/internal/uploads"
	"github.com/angelmondragon/atacado-catalog/internal/users"
	"github.com/angelmondragon/atacado-catalog/pkg/auth/session"
	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/redis"
)

// Dependencies carries everything the HTTP surface is wired to.
type Dependencies struct {
	Sessions    session.AccessSessionChecker
	RateLimiter middleware.RateLimiterStore
	Idempotency redis.IdempotencyStore
	Readiness   map[string]controllers.ReadinessCheck
	HTTPMetrics *metrics.HTTPMetrics
	// MetricsHandler serves /metrics; nil leaves the route unmounted.
	MetricsHandler http.Handler
	// UploadFiles serves stored images when the local driver is active.
	UploadFiles http.Handler

	Catalog    catalog.Service
	Auth       auth.Service
	References references.Service
	Products   product.Service
	Categories categories.Service
	Users      users.Service
	Uploads    uploads.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness, logg))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Get("/me", controllers.AuthMe(deps.Auth, logg))
	})

	r.Route("/api/catalog", func(r chi.Router) {
		r.Use(middleware.Viewer(cfg.JWT, deps.Sessions, logg))
		r.Get("/products", controllers.CatalogList(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.CatalogProduct(deps.Catalog, logg))
		r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
	})

	if deps.UploadFiles != nil {
		r.Method(http.MethodGet, cfg.Storage.PublicPath+"/*", deps.UploadFiles)
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/references", func(r chi.Router) {
			r.Get("/", controllers.AdminListReferences(deps.References, logg))
			r.Post("/", controllers.AdminCreateReference(deps.References, logg))
			r.Get("/{referenceId}", controllers.AdminGetReference(deps.References, logg))
			r.Put("/{referenceId}", controllers.AdminUpdateReference(deps.References, logg))
			r.Delete("/{referenceId}", controllers.AdminDeleteReference(deps.References, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Get("/{productId}", controllers.AdminGetProduct(deps.Products, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))
			r.Post("/{productId}/featured", controllers.AdminSetProductFeatured(deps.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminListCategories(deps.Categories, logg))
			r.Post("/", controllers.AdminCreateCategory(deps.Categories, logg))
			r.Put("/order", controllers.AdminReorderCategories(deps.Categories, logg))
			r.Put("/{categoryId}", controllers.AdminUpdateCategory(deps.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(deps.Categories, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Post("/", controllers.AdminCreateUser(deps.Users, logg))
			r.Put("/{userId}", controllers.AdminUpdateUser(deps.Users, logg))
			r.Delete("/{userId}", controllers.AdminDeleteUser(deps.Users, logg))
		})

		r.Post("/uploads", controllers.AdminUpload(deps.Uploads, cfg.Storage.MaxUploadBytes(), logg))
	})

	return r
}
