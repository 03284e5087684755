package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/truckbites/truckbites-backend/api/controllers"
	instrumentsctl "github.com/truckbites/truckbites-backend/api/controllers/instruments"
	ordersctl "github.com/truckbites/truckbites-backend/api/controllers/orders"
	"github.com/truckbites/truckbites-backend/api/responses"
	"github.com/truckbites/truckbites-backend/api/routes"
	"github.com/truckbites/truckbites-backend/internal/addresses"
	"github.com/truckbites/truckbites-backend/internal/checkout"
	"github.com/truckbites/truckbites-backend/internal/delivery"
	"github.com/truckbites/truckbites-backend/internal/instruments"
	"github.com/truckbites/truckbites-backend/internal/notifications"
	"github.com/truckbites/truckbites-backend/internal/orders"
	"github.com/truckbites/truckbites-backend/internal/payments"
	"github.com/truckbites/truckbites-backend/internal/pricing"
	"github.com/truckbites/truckbites-backend/internal/trucks"
	"github.com/truckbites/truckbites-backend/pkg/config"
	"github.com/truckbites/truckbites-backend/pkg/db"
	"github.com/truckbites/truckbites-backend/pkg/email"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/geocode"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/metrics"
	"github.com/truckbites/truckbites-backend/pkg/migrate"
	"github.com/truckbites/truckbites-backend/pkg/realtime"
	"github.com/truckbites/truckbites-backend/pkg/redis"
	"github.com/truckbites/truckbites-backend/pkg/square"
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

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(context.Background(), "failed to get sql db handle", err)
		os.Exit(1)
	}
	if err := migrate.MaybeRunDev(context.Background(), cfg, sqlDB, logg); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	geocoder, err := geocode.NewClient(cfg.Geocode.APIKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create geocode client", err)
		os.Exit(1)
	}

	mailClient, err := email.NewClient(cfg.Sendgrid.APIKey, cfg.Sendgrid.DefaultFrom)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	taxRate, err := cfg.Checkout.TaxRateDecimal()
	if err != nil {
		logg.Error(context.Background(), "invalid tax rate", err)
		os.Exit(1)
	}
	currency, err := enums.ParseCurrency(cfg.Checkout.DefaultCurrency)
	if err != nil {
		logg.Error(context.Background(), "invalid default currency", err)
		os.Exit(1)
	}

	m := metrics.New()

	trucksRepo := trucks.NewRepo(dbClient.DB())
	addressesRepo := addresses.NewRepo(dbClient.DB())
	instrumentsRepo := instruments.NewRepo(dbClient.DB())
	pricingRepo := pricing.NewRepo(dbClient.DB())
	ordersRepo := orders.NewRepo(dbClient.DB())
	reconciliationRepo := checkout.NewReconciliationRepo(dbClient.DB())

	publisher := realtime.NewPublisher(redisClient, logg)
	directory := notifications.NewDirectory(dbClient.DB())
	dispatcher := notifications.NewDispatcher(publisher, mailClient, directory, logg, m)

	orchestrator := payments.NewOrchestrator(squareClient, instrumentsRepo, logg)
	priceValidator := pricing.NewValidator(pricingRepo)
	deliveryResolver := delivery.NewResolver(addressesRepo, geocoder)

	checkoutSvc := checkout.NewService(
		dbClient,
		trucksRepo,
		priceValidator,
		deliveryResolver,
		orchestrator,
		ordersRepo,
		reconciliationRepo,
		dispatcher,
		redisClient,
		logg,
		m,
		taxRate,
		currency,
	)
	orderSvc := orders.NewService(dbClient, ordersRepo, trucksRepo, orchestrator, dispatcher, logg, m)

	writer := responses.NewWriter(logg)
	router := routes.New(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Writer:      writer,
		Health:      controllers.NewHealth(dbClient, redisClient, writer),
		Orders:      ordersctl.NewController(checkoutSvc, orderSvc, writer),
		Instruments: instrumentsctl.NewController(orchestrator, instrumentsRepo, writer),
		Metrics:     m.Handler(),
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
