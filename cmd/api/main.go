package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulppixels/pulppixels-backend/api/routes"
	authsvc "github.com/pulppixels/pulppixels-backend/internal/auth"
	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/internal/contact"
	"github.com/pulppixels/pulppixels-backend/internal/downloads"
	"github.com/pulppixels/pulppixels-backend/internal/payments"
	"github.com/pulppixels/pulppixels-backend/internal/ratings"
	"github.com/pulppixels/pulppixels-backend/pkg/auth/session"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
	"github.com/pulppixels/pulppixels-backend/pkg/metrics"
	"github.com/pulppixels/pulppixels-backend/pkg/migrate"
	"github.com/pulppixels/pulppixels-backend/pkg/razorpay"
	"github.com/pulppixels/pulppixels-backend/pkg/redis"
	"github.com/pulppixels/pulppixels-backend/pkg/storage/supastore"
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

	storageClient, err := supastore.NewClient(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	gatewayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap payment gateway", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mailer", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       authsvc.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, storageClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ratingsService, err := ratings.NewService(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(dbClient, gatewayClient, storageClient, catalogRepo,
		cfg.Storage.DownloadURLExpiry, cfg.FeatureFlags.SimulateUPI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	downloadsService, err := downloads.NewService(dbClient, storageClient, catalogRepo,
		cfg.Storage.DownloadURLExpiry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create downloads service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(dbClient, redisClient, mailClient, cfg.Contact, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	verifyGuard, err := payments.NewVerifyGuard(redisClient, cfg.Razorpay.VerifyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment verify guard", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Storage:    storageClient,
			Sessions:   sessionManager,
			Metrics:    httpMetrics,
			Registry:   registry,
			Auth:       authService,
			Catalog:    catalogService,
			Ratings:    ratingsService,
			Payments:   paymentsService,
			Downloads:  downloadsService,
			Contact:    contactService,
			TestMailer: mailClient,

			PaymentGuard: verifyGuard,
			Limiter:      redisClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
