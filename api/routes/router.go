package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monsoonshop/monsoon-backend/api/controllers"
	webhookcontrollers "github.com/monsoonshop/monsoon-backend/api/controllers/webhooks"
	"github.com/monsoonshop/monsoon-backend/api/middleware"
	authsvc "github.com/monsoonshop/monsoon-backend/internal/auth"
	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	checkoutsvc "github.com/monsoonshop/monsoon-backend/internal/checkout"
	"github.com/monsoonshop/monsoon-backend/internal/orders"
	stripewebhook "github.com/monsoonshop/monsoon-backend/internal/webhooks/stripe"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	"github.com/monsoonshop/monsoon-backend/pkg/db"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
	"github.com/monsoonshop/monsoon-backend/pkg/redis"
	"github.com/monsoonshop/monsoon-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService authsvc.Service,
	catalogService catalog.Service,
	cartHandlers *controllers.CartHandlers,
	checkoutService checkoutsvc.Service,
	ordersRepo *orders.Repository,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Checkout.AppURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{productId}", controllers.GetProduct(catalogService, logg))
		r.Get("/categories", controllers.ListCategories(catalogService, logg))
		r.Get("/search", controllers.SearchProducts(catalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandlers.Fetch())
			r.Post("/", cartHandlers.Add())
			r.Delete("/", cartHandlers.Clear())
			r.Patch("/{cartId}", cartHandlers.UpdateQuantity())
			r.Delete("/{cartId}", cartHandlers.Remove())
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminAuthLogin(authService, cfg.Admin, redisClient, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(catalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Get("/{productId}", controllers.AdminGetProduct(catalogService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateCategory(catalogService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(catalogService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(ordersRepo, logg))
				r.Get("/export.csv", controllers.AdminExportOrders(ordersRepo, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(ordersRepo, logg))
			})
		})
	})

	return r
}
