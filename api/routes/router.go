package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duboyz/kumiko-backend/api/controllers"
	webhookcontrollers "github.com/duboyz/kumiko-backend/api/controllers/webhooks"
	"github.com/duboyz/kumiko-backend/api/middleware"
	"github.com/duboyz/kumiko-backend/internal/cart"
	checkoutsvc "github.com/duboyz/kumiko-backend/internal/checkout"
	"github.com/duboyz/kumiko-backend/internal/menus"
	"github.com/duboyz/kumiko-backend/internal/orders"
	"github.com/duboyz/kumiko-backend/internal/payments"
	"github.com/duboyz/kumiko-backend/internal/restaurants"
	subscriptionsvc "github.com/duboyz/kumiko-backend/internal/subscriptions"
	stripewebhook "github.com/duboyz/kumiko-backend/internal/webhooks/stripe"
	"github.com/duboyz/kumiko-backend/pkg/config"
	"github.com/duboyz/kumiko-backend/pkg/logger"
	"github.com/duboyz/kumiko-backend/pkg/metrics"
	pkgstripe "github.com/duboyz/kumiko-backend/pkg/stripe"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Carts         cart.Service
	Restaurants   restaurants.Service
	Menus         menus.Service
	Orders        orders.Service
	Checkout      checkoutsvc.Service
	Payments      payments.Service
	Subscriptions subscriptionsvc.Service

	StripeClient *pkgstripe.Client
	WebhookSvc   *stripewebhook.Service
	WebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.WebhookSvc, deps.StripeClient, deps.WebhookGuard, logg))
	})

	// Storefront surface. Anonymous; cart routes identify the visitor by
	// the session header alone.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/storefront/{slug}", controllers.StorefrontBySlug(deps.Restaurants, logg))
		r.Get("/restaurants/{restaurantId}/pickup-window", controllers.PickupWindow(deps.Restaurants, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Delete("/", controllers.CartDiscard(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Delete("/items", controllers.CartClear(deps.Carts, logg))
			r.Patch("/lines/{lineId}", controllers.CartUpdateQuantity(deps.Carts, logg))
			r.Delete("/lines/{lineId}", controllers.CartRemoveLine(deps.Carts, logg))
			r.Patch("/customer", controllers.CartSetCustomerField(deps.Carts, logg))
			r.Post("/customer/reset", controllers.CartResetCustomer(deps.Carts, logg))
			r.Put("/context", controllers.CartSetContext(deps.Carts, logg))
		})

		r.With(middleware.CartSession(logg)).Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Get("/config", controllers.PaymentConfig(deps.Payments, logg))
			r.Post("/intents", controllers.PaymentCreateIntent(deps.Payments, logg))
			r.Get("/intents/{intentId}/confirm", controllers.PaymentConfirm(deps.Payments, logg))
		})
	})

	// Dashboard surface. JWT-authenticated restaurant owners.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/", controllers.RestaurantCreate(deps.Restaurants, logg))
			r.Get("/", controllers.RestaurantList(deps.Restaurants, logg))
			r.Get("/{restaurantId}", controllers.RestaurantDetail(deps.Restaurants, logg))
			r.Patch("/{restaurantId}", controllers.RestaurantUpdate(deps.Restaurants, logg))

			r.Post("/{restaurantId}/menus", controllers.MenuCreate(deps.Menus, logg))

			r.Get("/{restaurantId}/orders", controllers.OrderList(deps.Orders, logg))
			r.Get("/{restaurantId}/orders/counts", controllers.OrderStatusCounts(deps.Orders, logg))

			r.Post("/{restaurantId}/stripe/onboarding-link", controllers.PaymentOnboardingLink(deps.Payments, logg))
			r.Get("/{restaurantId}/subscription", controllers.SubscriptionDetail(deps.Subscriptions, logg))
			r.Get("/{restaurantId}/subscription/verify", controllers.SubscriptionVerify(deps.Subscriptions, logg))
		})

		r.Route("/menus/{menuId}", func(r chi.Router) {
			r.Get("/", controllers.MenuDetail(deps.Menus, logg))
			r.Patch("/", controllers.MenuUpdate(deps.Menus, logg))
			r.Delete("/", controllers.MenuDelete(deps.Menus, logg))
			r.Post("/categories", controllers.CategoryCreate(deps.Menus, logg))
			r.Put("/categories/order", controllers.CategoryReorder(deps.Menus, logg))
		})

		r.Route("/categories/{categoryId}", func(r chi.Router) {
			r.Patch("/", controllers.CategoryUpdate(deps.Menus, logg))
			r.Delete("/", controllers.CategoryDelete(deps.Menus, logg))
			r.Post("/items", controllers.ItemCreate(deps.Menus, logg))
		})

		r.Route("/items/{itemId}", func(r chi.Router) {
			r.Patch("/", controllers.ItemUpdate(deps.Menus, logg))
			r.Delete("/", controllers.ItemDelete(deps.Menus, logg))
			r.Post("/options", controllers.OptionCreate(deps.Menus, logg))
		})

		r.Route("/options/{optionId}", func(r chi.Router) {
			r.Patch("/", controllers.OptionUpdate(deps.Menus, logg))
			r.Delete("/", controllers.OptionDelete(deps.Menus, logg))
		})

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/status", controllers.OrderTransition(deps.Orders, logg))
		})
	})

	return r
}
