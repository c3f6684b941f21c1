package main

import (
	"sweethomes/internal/bookings/handler"
	"sweethomes/internal/bookings/service"
	"sweethomes/internal/bookings/validator"
	"sweethomes/internal/catalog"
	cataloghandler "sweethomes/internal/catalog/handler"
	"sweethomes/internal/events"
	"sweethomes/internal/health"
	pricinghandler "sweethomes/internal/pricing/handler"
	pricingservice "sweethomes/internal/pricing/service"
	"sweethomes/pkg/app"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	"sweethomes/pkg/contracts"
	kafka_config "sweethomes/pkg/kafka/config"
	"sweethomes/pkg/middleware"
	"sweethomes/pkg/sanitizer"

	"github.com/joho/godotenv"
)

const ServiceName = config.ServiceSite

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting public site service")
	cfg.SetRedis()

	publisher := initPublisher(cfg)
	backend := client.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout)
	siteCatalog := initCatalog(cfg, backend)

	pricingService := pricingservice.NewPricingService(backend, siteCatalog, publisher, cfg)
	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.StrictPhoneValidation, cfg.Location)
	formService := service.NewBookingFormService(backend, pricingService, bookingValidator, publisher, cfg)
	cfg.Log.Info("Site services initialized", "currency", cfg.Currency)

	phoneExtractor := middleware.JSONFieldPhoneExtractor(
		"phoneNumber",
		int64(cfg.MaxRequestSize),
		func(phone string) string { return sanitizer.NormalizePhone(phone, cfg.PhoneRegion) },
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(app.Options{
		Health: health.NewHealthHandler(nil, cfg.Client.Redis, cfg.Log),
		Handlers: []contracts.Handler{
			cataloghandler.NewSiteHandler(siteCatalog, cfg.PlaceholderImageURL, cfg.Log),
			pricinghandler.NewQuoteHandler(pricingService, cfg.Log),
			handler.NewBookingFormHandler(formService, cfg.Log),
		},
		PhoneExtractor:   phoneExtractor,
		IdempotencyScope: middleware.IdempotencyScope(phoneExtractor),
	})
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(func() { cfg.Client.GracefulShutdown(cfg.Log) })
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	publisher, err := events.New(kafkaCfg, cfg.EventsTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}

func initCatalog(cfg *config.Config, backend *client.BackendClient) *catalog.Catalog {
	var cache catalog.Cache
	if cfg.Client.Redis != nil {
		cache = catalog.NewRedisCache(cfg.Client.Redis)
	}
	return catalog.New(backend, cache, cfg)
}
