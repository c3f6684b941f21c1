package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sweethomes/pkg/config"
	"sweethomes/pkg/contracts"
	"sweethomes/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Options selects the middleware stack for one service.
type Options struct {
	// Health serves /health and /ready behind Recovery and Logging only.
	Health contracts.Handler
	// Handlers register the application routes.
	Handlers []contracts.Handler
	// PhoneExtractor enables per-phone rate limiting of POST requests.
	PhoneExtractor middleware.PhoneExtractor
	// ContentTypes accepted on request bodies; defaults to application/json.
	ContentTypes []string
	// MaxRequestSize overrides cfg.MaxRequestSize, for services taking uploads.
	MaxRequestSize int64
	// DisableTimeout skips RequestTimeout for services with long-running requests.
	DisableTimeout bool
	// IdempotencyScope partitions idempotency keys per caller. Requests it
	// maps to "" are never replayed.
	IdempotencyScope middleware.IdempotencyScope
	// IdempotencyExclude lists paths that bypass idempotency entirely.
	IdempotencyExclude []string
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.PhoneRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	shutdownHooks    []func()
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(opts Options) {
	a.setHealthHandler(opts)
	a.setAppHandler(opts)
	a.setAppServer()
}

// OnShutdown registers fn to run after the server has drained, in order.
func (a *Application) OnShutdown(fn func()) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

// Handler exposes the fully wrapped mux.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(opts Options) {
	healthRouter := httprouter.New()
	if opts.Health != nil {
		opts.Health.RegisterRoutes(healthRouter)
	}

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(opts Options) {
	appRouter := httprouter.New()
	for _, h := range opts.Handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = a.newIdempotencyStore()

	maxRequestSize := int64(a.cfg.MaxRequestSize)
	if opts.MaxRequestSize > 0 {
		maxRequestSize = opts.MaxRequestSize
	}

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyOptions{
		HeaderName: "Idempotency-Key",
		Scope:      opts.IdempotencyScope,
		Exclude:    opts.IdempotencyExclude,
	})(appHttpHandler)
	if !opts.DisableTimeout {
		appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	}
	if opts.PhoneExtractor != nil {
		a.rateLimiter = middleware.NewPhoneRateLimiter(
			a.cfg.RateLimitRequests,
			a.cfg.RateLimitWindow,
			opts.PhoneExtractor,
			a.cfg.Log,
		)
		appHttpHandler = middleware.PhoneRateLimit(a.rateLimiter)(appHttpHandler)
		a.cfg.Log.Info("Per-phone rate limiting enabled",
			"requests", a.cfg.RateLimitRequests,
			"window", a.cfg.RateLimitWindow,
		)
	}
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log, opts.ContentTypes...)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(maxRequestSize)(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

// newIdempotencyStore shares keys through Redis when the service has it.
func (a *Application) newIdempotencyStore() middleware.IdempotencyStore {
	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.cfg.Log.Info("Idempotency keys stored in Redis", "ttl", a.cfg.IdempotencyTTL)
		return middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
	}
	return middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	for _, hook := range a.shutdownHooks {
		hook()
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
