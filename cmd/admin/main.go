package main

import (
	bookingshandler "sweethomes/internal/bookings/handler"
	bookingsservice "sweethomes/internal/bookings/service"
	"sweethomes/internal/bookings/validator"
	"sweethomes/internal/catalog"
	"sweethomes/internal/dashboard"
	dashboardhandler "sweethomes/internal/dashboard/handler"
	"sweethomes/internal/events"
	galleryhandler "sweethomes/internal/gallery/handler"
	galleryservice "sweethomes/internal/gallery/service"
	"sweethomes/internal/health"
	pricinghandler "sweethomes/internal/pricing/handler"
	pricingservice "sweethomes/internal/pricing/service"
	sessionshandler "sweethomes/internal/sessions/handler"
	"sweethomes/internal/sessions/repository"
	sessionsservice "sweethomes/internal/sessions/service"
	"sweethomes/pkg/app"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	"sweethomes/pkg/contracts"
	kafka_config "sweethomes/pkg/kafka/config"
	"sweethomes/pkg/middleware"
	"sweethomes/pkg/sealer"

	"github.com/joho/godotenv"
)

const ServiceName = config.ServiceAdmin

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting admin service")
	if cfg.SessionStore == config.SessionStoreMongo {
		cfg.SetMongo()
	}
	cfg.SetRedis()

	publisher := initPublisher(cfg)
	backend := client.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout)
	siteCatalog := initCatalog(cfg, backend)

	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.StrictPhoneValidation, cfg.Location)
	bookingManager := bookingsservice.NewBookingManager(backend, bookingValidator, publisher, cfg)
	pricingService := pricingservice.NewPricingService(backend, siteCatalog, publisher, cfg)
	galleryService := galleryservice.NewGalleryService(backend, siteCatalog, publisher, cfg)
	loader := dashboard.NewLoader(bookingManager, pricingService, galleryService, cfg)

	sessionService := sessionsservice.NewSessionService(
		backend,
		initSessionRepository(cfg),
		initSealer(cfg),
		loader,
		publisher,
		cfg,
	)
	sessionService.OnLogout(bookingManager.Forget)
	guard := sessionshandler.NewCookieGuard(sessionService, cfg.Log)
	cfg.Log.Info("Admin services initialized", "session_store", cfg.SessionStore)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(app.Options{
		Health: health.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log),
		Handlers: []contracts.Handler{
			sessionshandler.NewSessionHandler(sessionService, cfg.SessionCookieSecure, cfg.Log),
			dashboardhandler.NewDashboardHandler(loader, guard, cfg.Log),
			bookingshandler.NewBookingsHandler(bookingManager, guard, cfg.Log),
			pricinghandler.NewPricesHandler(pricingService, guard, cfg.Log),
			galleryhandler.NewGalleryHandler(galleryService, guard, cfg.MaxUploadSize, cfg.Log),
		},
		ContentTypes:     []string{middleware.ContentTypeJSON, middleware.ContentTypeMultipart},
		MaxRequestSize:   int64(cfg.MaxUploadSize),
		DisableTimeout:   true,
		IdempotencyScope: sessionshandler.CallerScope,
		IdempotencyExclude: []string{
			sessionshandler.LoginPath,
			sessionshandler.LogoutPath,
		},
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

func initSessionRepository(cfg *config.Config) repository.SessionRepository {
	if cfg.SessionStore == config.SessionStoreMongo {
		cfg.Log.Info("Admin sessions stored in MongoDB", "database", cfg.MongoDatabaseName, "collection", repository.CollectionName)
		return repository.NewMongoSessionRepository(cfg)
	}
	cfg.Log.Warn("Admin sessions stored in memory; a restart logs every admin out")
	return repository.NewMemorySessionRepository()
}

// initSealer uses SESSION_SEALING_KEY, or a per-process key when unset.
func initSealer(cfg *config.Config) *sealer.Sealer {
	key := cfg.SessionSealingKey
	if key == "" {
		generated, err := sealer.GenerateKey()
		if err != nil {
			cfg.Log.Fatal("Failed to generate session sealing key", "error", err)
		}
		cfg.Log.Warn("SESSION_SEALING_KEY not set; sessions will not survive a restart")
		key = generated
	}

	s, err := sealer.New(key)
	if err != nil {
		cfg.Log.Fatal("Invalid session sealing key", "error", err)
	}
	return s
}
