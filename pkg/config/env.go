package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactions = "MONGO_TRANSACTIONS"

	EnvRedisAddr            = "REDIS_ADDR"
	EnvRedisPassword        = "REDIS_PASSWORD"
	EnvRedisDB              = "REDIS_DB"
	EnvAvailabilityCacheTTL = "AVAILABILITY_CACHE_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvHotelsServiceURL       = "HOTELS_SERVICE_URL"
	EnvReservationsServiceURL = "RESERVATIONS_SERVICE_URL"
	EnvServiceClientTimeout   = "SERVICE_CLIENT_TIMEOUT"

	EnvOTAWebhookSecret = "OTA_WEBHOOK_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultTimeZone           = "DEFAULT_TIME_ZONE"
	EnvDefaultReleaseHour        = "DEFAULT_RELEASE_HOUR"
	EnvDateCacheSize             = "DATE_CACHE_SIZE"
	EnvRoomMatchThreshold        = "ROOM_MATCH_THRESHOLD"
	EnvMaxAvailabilityWindowDays = "MAX_AVAILABILITY_WINDOW_DAYS"
	EnvRoomLockTTL               = "ROOM_LOCK_TTL"

	EnvLockPurgeSchedule  = "LOCK_PURGE_SCHEDULE"
	EnvSalesCloseSchedule = "SALES_CLOSE_SCHEDULE"
)
