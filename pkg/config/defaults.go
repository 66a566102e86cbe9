package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "frontdesk"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = true

	DefaultRedisAddr            = "localhost:6379"
	DefaultRedisDB              = 0
	DefaultAvailabilityCacheTTL = 5 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultHotelsServiceURL       = "http://localhost:8081"
	DefaultReservationsServiceURL = "http://localhost:8080"
	DefaultServiceClientTimeout   = 5 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimeZone                  = "Asia/Seoul"
	DefaultReleaseHour               = 2
	DefaultDateCacheSize             = 4096
	DefaultRoomMatchThreshold        = 0.7
	DefaultMaxAvailabilityWindowDays = 31
	DefaultRoomLockTTL               = 30 * time.Second

	DefaultLockPurgeSchedule  = "@every 1m"
	DefaultSalesCloseSchedule = "0 5 2 * * *"

	DefaultPaginationLimit  = 100
	FallbackPaginationLimit = 10
)
