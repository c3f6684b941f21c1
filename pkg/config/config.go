package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sweethomes/pkg/client"
	"sweethomes/pkg/logger"
)

type Config struct {
	ServiceName string

	BackendURL     string
	BackendTimeout time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int
	MaxUploadSize  int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Currency              string
	PhoneRegion           string
	StrictPhoneValidation bool
	Timezone              string
	Location              *time.Location

	UploadPacing        time.Duration
	SearchDebounce      time.Duration
	PlaceholderImageURL string

	SessionStore        string
	SessionSealingKey   string
	SessionCookieSecure bool

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	EventsTopic string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	defaultPort, ok := DefaultPorts[serviceName]
	if !ok {
		defaultPort = DefaultSitePort
	}

	cfg := &Config{
		ServiceName: serviceName,

		BackendURL:     strings.TrimSpace(getEnvStr(EnvBackendURL, "")),
		BackendTimeout: getEnvDuration(EnvBackendTimeout, DefaultBackendTimeout),

		Port: getEnvStr(EnvPort, defaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		MaxUploadSize:  getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Currency:              getEnvStr(EnvCurrency, DefaultCurrency),
		PhoneRegion:           strings.ToUpper(getEnvStr(EnvPhoneRegion, DefaultPhoneRegion)),
		StrictPhoneValidation: getEnvBool(EnvStrictPhoneValidation, DefaultStrictPhoneValidation),
		Timezone:              getEnvStr(EnvTimezone, DefaultTimezone),

		UploadPacing:        getEnvDuration(EnvUploadPacing, DefaultUploadPacing),
		SearchDebounce:      getEnvDuration(EnvSearchDebounce, DefaultSearchDebounce),
		PlaceholderImageURL: getEnvStr(EnvPlaceholderImageURL, DefaultPlaceholderImageURL),

		SessionStore:        strings.ToLower(getEnvStr(EnvSessionStore, DefaultSessionStore)),
		SessionSealingKey:   getEnvStr(EnvSessionSealingKey, ""),
		SessionCookieSecure: getEnvBool(EnvSessionCookieSecure, DefaultSessionCookieSecure),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:       getEnvStr(EnvRedisAddr, ""),
		RedisPassword:   getEnvStr(EnvRedisPassword, ""),
		RedisDB:         getEnvNum(EnvRedisDB, DefaultRedisDB),
		CatalogCacheTTL: getEnvDuration(EnvCatalogCacheTTL, DefaultCatalogCacheTTL),

		EventsTopic: getEnvStr(EnvEventsTopic, DefaultEventsTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional catalog cache. Without REDIS_ADDR nothing happens.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis not configured, catalog cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.BackendURL == "" {
		errors = append(errors, "BackendURL cannot be empty")
	} else if u, err := url.Parse(cfg.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("BackendURL must be an absolute http(s) URL, got: %s", cfg.BackendURL))
	} else if strings.Contains(cfg.BackendURL, "REPLACE_WITH") {
		errors = append(errors, "BackendURL still holds the placeholder value")
	}

	if cfg.BackendTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("BackendTimeout must be positive, got: %s", cfg.BackendTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxUploadSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxUploadSize must be positive, got: %d", cfg.MaxUploadSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.Currency == "" {
		errors = append(errors, "Currency cannot be empty")
	}
	if !regexp.MustCompile(`^[A-Z]{2}$`).MatchString(cfg.PhoneRegion) {
		errors = append(errors, fmt.Sprintf("PhoneRegion must be an ISO 3166-1 alpha-2 code, got: %s", cfg.PhoneRegion))
	}
	if loc, err := time.LoadLocation(cfg.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("Timezone must be a valid IANA name, got: %s", cfg.Timezone))
	} else {
		cfg.Location = loc
	}

	if cfg.UploadPacing < 0 {
		errors = append(errors, fmt.Sprintf("UploadPacing cannot be negative, got: %s", cfg.UploadPacing))
	}
	if cfg.SearchDebounce < 0 {
		errors = append(errors, fmt.Sprintf("SearchDebounce cannot be negative, got: %s", cfg.SearchDebounce))
	}

	switch cfg.SessionStore {
	case SessionStoreMemory:
	case SessionStoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("SessionStore must be one of [mongo, memory], got: %s", cfg.SessionStore))
	}

	if cfg.SessionSealingKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SessionSealingKey)
		if err != nil || (len(key) != 16 && len(key) != 24 && len(key) != 32) {
			errors = append(errors, "SessionSealingKey must be base64 of a 16, 24 or 32 byte key")
		}
	}

	if cfg.RedisAddr != "" && cfg.CatalogCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("CatalogCacheTTL must be positive, got: %s", cfg.CatalogCacheTTL))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"backend_url", redactBackendURL(cfg.BackendURL),
		"backend_timeout", cfg.BackendTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"max_upload_size", cfg.MaxUploadSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"currency", cfg.Currency,
		"phone_region", cfg.PhoneRegion,
		"strict_phone_validation", cfg.StrictPhoneValidation,
		"timezone", cfg.Timezone,
		"upload_pacing", cfg.UploadPacing,
		"search_debounce", cfg.SearchDebounce,
		"session_store", cfg.SessionStore,
		"session_sealing_key_set", cfg.SessionSealingKey != "",
		"session_cookie_secure", cfg.SessionCookieSecure,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"redis_enabled", cfg.RedisAddr != "",
		"catalog_cache_ttl", cfg.CatalogCacheTTL,
		"events_topic", cfg.EventsTopic,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

// Apps Script deployment ids act as bearer secrets, keep only scheme and host.
func redactBackendURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
