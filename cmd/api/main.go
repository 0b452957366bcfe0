package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/duboyz/kumiko-backend/api/routes"
	"github.com/duboyz/kumiko-backend/internal/cart"
	"github.com/duboyz/kumiko-backend/internal/checkout"
	"github.com/duboyz/kumiko-backend/internal/menus"
	"github.com/duboyz/kumiko-backend/internal/orders"
	"github.com/duboyz/kumiko-backend/internal/payments"
	"github.com/duboyz/kumiko-backend/internal/restaurants"
	"github.com/duboyz/kumiko-backend/internal/subscriptions"
	stripewebhook "github.com/duboyz/kumiko-backend/internal/webhooks/stripe"
	"github.com/duboyz/kumiko-backend/pkg/config"
	"github.com/duboyz/kumiko-backend/pkg/db"
	"github.com/duboyz/kumiko-backend/pkg/logger"
	"github.com/duboyz/kumiko-backend/pkg/metrics"
	"github.com/duboyz/kumiko-backend/pkg/migrate"
	"github.com/duboyz/kumiko-backend/pkg/redis"
	pkgstripe "github.com/duboyz/kumiko-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		fatal(logg, "failed to run dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap stripe", err)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	restaurantRepo := restaurants.NewRepository(dbClient.DB())
	menuRepo := menus.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.SessionTTL)
	if err != nil {
		fatal(logg, "failed to create cart store", err)
	}
	cartService, err := cart.NewService(cartStore, cart.Options{DefaultPickupTime: cfg.Cart.DefaultPickupTime})
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}

	restaurantService, err := restaurants.NewService(restaurantRepo, restaurants.Options{
		PreparationBuffer: cfg.Checkout.PreparationBuffer,
		LookaheadDays:     cfg.Checkout.PickupWindowDays,
	})
	if err != nil {
		fatal(logg, "failed to create restaurant service", err)
	}

	menuService, err := menus.NewService(menuRepo, restaurantRepo)
	if err != nil {
		fatal(logg, "failed to create menu service", err)
	}

	orderService, err := orders.NewService(orderRepo, restaurantRepo)
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}

	checkoutService, err := checkout.NewService(checkout.WrapOrders(orderRepo), dbClient, cartService, restaurantRepo, httpMetrics)
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}

	paymentService, err := payments.NewService(payments.NewStripeClient(stripeClient), orderRepo, restaurantRepo, stripeClient)
	if err != nil {
		fatal(logg, "failed to create payment service", err)
	}

	subscriptionService, err := subscriptions.NewService(subscriptionRepo, redisClient, logg, subscriptions.Options{
		MaxAttempts: cfg.Verification.MaxAttempts,
		RetryDelay:  cfg.Verification.RetryDelay,
	})
	if err != nil {
		fatal(logg, "failed to create subscription service", err)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Subscriptions: subscriptionRepo,
		Restaurants:   restaurantRepo,
		Orders:        orderService,
		Cache:         redisClient,
	})
	if err != nil {
		fatal(logg, "failed to create webhook service", err)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "stripe")
	if err != nil {
		fatal(logg, "failed to create webhook guard", err)
	}

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,

		DBPinger:    dbClient,
		RedisPinger: redisClient,

		Carts:         cartService,
		Restaurants:   restaurantService,
		Menus:         menuService,
		Orders:        orderService,
		Checkout:      checkoutService,
		Payments:      paymentService,
		Subscriptions: subscriptionService,

		StripeClient: stripeClient,
		WebhookSvc:   webhookService,
		WebhookGuard: webhookGuard,
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
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
