// Package contentmarketplace предоставляет маршруты для основного приложения.
package contentmarketplace

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/content-marketplace/docs"
	"github.com/magabrotheeeer/content-marketplace/internal/billingprovider"
	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/freeaccess"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/revoke"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/checkout/create"
	contentlist "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/content/list"
	contentread "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/content/read"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/download/issue"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/download/redeem"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/health"
	profileread "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/profile/read"
	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/content-marketplace/internal/services/auth"
	billingservice "github.com/magabrotheeeer/content-marketplace/internal/services/billing"
	catalogservice "github.com/magabrotheeeer/content-marketplace/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/content-marketplace/internal/services/checkout"
	downloadservice "github.com/magabrotheeeer/content-marketplace/internal/services/download"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"

	"log/slog"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg *config.Config,
	db *repository.Storage,
	authService *authservice.Service,
	catalogService *catalogservice.Service,
	checkoutService *checkoutservice.Service,
	billingService *billingservice.Service,
	downloadService *downloadservice.Service,
	providerClient *billingprovider.Client,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/content", contentlist.New(logger, catalogService).ServeHTTP)
		r.Get("/content/{slug}", contentread.New(logger, catalogService).ServeHTTP)

		// Скачивание по одноразовому токену: право уже проверено при выдаче
		r.Get("/download/{token}", redeem.New(logger, downloadService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/me", profileread.New(logger, db).ServeHTTP)
			r.Post("/checkout/sessions", create.New(logger, checkoutService, catalogService, db, create.Prices{
				MonthlyID: cfg.Stripe.PriceMonthlyID,
				AnnualID:  cfg.Stripe.PriceAnnualID,
			}).ServeHTTP)
			r.Post("/downloads", issue.New(logger, downloadService).ServeHTTP)

			// Группа для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/free-access", freeaccess.New(logger, db).ServeHTTP)
				r.Post("/admin/revoke", revoke.New(logger, db).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации, подпись проверяется отдельно)
		r.Post("/billing/webhook", webhook.New(logger, providerClient, billingService).ServeHTTP)
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
