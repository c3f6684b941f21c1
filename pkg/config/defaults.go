package config

import "time"

const (
	ServiceSite  = "site"
	ServiceAdmin = "admin"
)

const (
	DefaultBackendTimeout = 30 * time.Second

	DefaultSitePort  = "8080"
	DefaultAdminPort = "8081"
	DefaultLogLevel  = "info"

	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 60 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024  // 1MB
	DefaultMaxUploadSize  = 25 * 1024 * 1024 // 25MB per upload request

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCurrency              = "KES"
	DefaultPhoneRegion           = "KE"
	DefaultStrictPhoneValidation = false
	DefaultTimezone              = "Africa/Nairobi"

	DefaultUploadPacing        = 1 * time.Second
	DefaultSearchDebounce      = 300 * time.Millisecond
	DefaultPlaceholderImageURL = "https://placehold.co/800x600?text=Sweet+Homes"

	SessionStoreMongo          = "mongo"
	SessionStoreMemory         = "memory"
	DefaultSessionStore        = SessionStoreMongo
	DefaultSessionCookieSecure = true

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sweethomes"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB         = 0
	DefaultCatalogCacheTTL = 2 * time.Minute

	DefaultEventsTopic = "sweethomes.activity"
)

var DefaultPorts = map[string]string{
	ServiceSite:  DefaultSitePort,
	ServiceAdmin: DefaultAdminPort,
}
