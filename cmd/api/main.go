package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/monsoonshop/monsoon-backend/api/controllers"
	"github.com/monsoonshop/monsoon-backend/api/routes"
	authsvc "github.com/monsoonshop/monsoon-backend/internal/auth"
	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	checkoutsvc "github.com/monsoonshop/monsoon-backend/internal/checkout"
	"github.com/monsoonshop/monsoon-backend/internal/orders"
	stripewebhook "github.com/monsoonshop/monsoon-backend/internal/webhooks/stripe"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	"github.com/monsoonshop/monsoon-backend/pkg/db"
	"github.com/monsoonshop/monsoon-backend/pkg/email"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
	"github.com/monsoonshop/monsoon-backend/pkg/migrate"
	"github.com/monsoonshop/monsoon-backend/pkg/redis"
	"github.com/monsoonshop/monsoon-backend/pkg/stripe"
)

const webhookEventTTL = 24 * time.Hour

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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	var emailSender email.Sender
	if cfg.Sendgrid.APIKey != "" {
		sender, err := email.NewSendgridSender(cfg.Sendgrid)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap sendgrid", err)
			os.Exit(1)
		}
		emailSender = sender
	} else {
		logg.Warn(context.Background(), "sendgrid not configured, order confirmations disabled")
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(cfg.Admin, cfg.JWT, cfg.App.IsDev())
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		catalogRepo,
		ordersRepo,
		checkoutsvc.NewStripeSessionClient(stripeClient),
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		OrdersRepo:        ordersRepo,
		CatalogRepo:       catalogRepo,
		TransactionRunner: dbClient,
		EmailSender:       emailSender,
		Currency:          cfg.Checkout.Currency,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookEventTTL, "stripe_webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	cartHandlers := controllers.NewCartHandlers(redisClient, catalogService, cfg.Cart, logg)

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			catalogService,
			cartHandlers,
			checkoutService,
			ordersRepo,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
