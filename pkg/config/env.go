package config

const (
	EnvBackendURL     = "BACKEND_URL"
	EnvBackendTimeout = "BACKEND_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCurrency              = "CURRENCY"
	EnvPhoneRegion           = "PHONE_REGION"
	EnvStrictPhoneValidation = "STRICT_PHONE_VALIDATION"
	EnvTimezone              = "TIMEZONE"

	EnvUploadPacing        = "UPLOAD_PACING"
	EnvSearchDebounce      = "SEARCH_DEBOUNCE"
	EnvPlaceholderImageURL = "PLACEHOLDER_IMAGE_URL"

	EnvSessionStore        = "SESSION_STORE"
	EnvSessionSealingKey   = "SESSION_SEALING_KEY"
	EnvSessionCookieSecure = "SESSION_COOKIE_SECURE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvCatalogCacheTTL = "CATALOG_CACHE_TTL"

	EnvEventsTopic = "EVENTS_TOPIC"
)
